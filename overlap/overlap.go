// Package overlap compares two labeled sets of genomic intervals.  For every
// interval in a query set it reports the length of its intersection with each
// interval in a reference set lying on the same sequence, along with the
// non-overlapping remainders on either side.  Query intervals with no partner
// are reported once with zero overlap.
package overlap

// An Interval is a closed coordinate range on a named reference sequence.
// Start <= End always holds; constructors normalize reversed (minus-strand)
// coordinate pairs.
type Interval struct {
	ID       string
	Sequence string
	Start    int
	End      int
}

// Length returns the span of the interval.
func (iv Interval) Length() int { return iv.End - iv.Start }

// Normalize returns the coordinate pair in ascending order.  Input files may
// present the bounds in either order, depending on strand.
func Normalize(start, end int) (int, int) {
	if start > end {
		return end, start
	}
	return start, end
}

// A Set is an ordered id -> interval association.  Iteration order is
// insertion order.  Adding an id a second time replaces the earlier interval
// in place, keeping its original position; the matcher's tie-break contract
// depends on this order staying fixed across runs.
type Set struct {
	intervals []Interval
	index     map[string]int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add records an interval, normalizing the coordinate pair.  The last Add for
// a given id wins.
func (s *Set) Add(id, sequence string, start, end int) {
	low, high := Normalize(start, end)
	iv := Interval{ID: id, Sequence: sequence, Start: low, End: high}
	if i, ok := s.index[id]; ok {
		s.intervals[i] = iv
		return
	}
	s.index[id] = len(s.intervals)
	s.intervals = append(s.intervals, iv)
}

// Len returns the number of intervals in the set.
func (s *Set) Len() int { return len(s.intervals) }

// Intervals returns the intervals in insertion order.  The caller must not
// modify the returned slice.
func (s *Set) Intervals() []Interval { return s.intervals }

// Get returns the interval stored under id.
func (s *Set) Get(id string) (Interval, bool) {
	i, ok := s.index[id]
	if !ok {
		return Interval{}, false
	}
	return s.intervals[i], true
}

// A Result describes the relationship between one query interval and one
// reference interval.  ID2 is empty when the query interval overlaps nothing
// in the reference set; Overlap and Outside2 are then zero and Outside1 is
// the full query length.
type Result struct {
	ID1      string
	ID2      string
	Overlap  int
	Outside1 int
	Outside2 int
}

// Find reports, for every interval in the query set, its overlaps with
// same-sequence intervals in the reference set.  A query interval with k
// overlapping partners produces k records, one per partner; a query interval
// with none produces a single partnerless record.  Records appear in
// query-set order with partners in reference-set order, so repeated runs over
// the same sets yield identical output.
func Find(query, ref *Set) []Result {
	var results []Result
	for _, q := range query.Intervals() {
		found := false
		for _, r := range ref.Intervals() {
			if q.Sequence != r.Sequence || q.Start > r.End || r.Start > q.End {
				continue
			}
			ov := minInt(q.End, r.End) - maxInt(q.Start, r.Start)
			if ov < 0 {
				ov = 0
			}
			results = append(results, Result{
				ID1:      q.ID,
				ID2:      r.ID,
				Overlap:  ov,
				Outside1: q.Length() - ov,
				Outside2: r.Length() - ov,
			})
			found = true
		}
		if !found {
			results = append(results, Result{ID1: q.ID, Outside1: q.Length()})
		}
	}
	return results
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
