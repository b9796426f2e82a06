package overlap

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// parseFields extracts one interval from the columns of a tab-separated row:
// column 0 is the id, column 2 the sequence name, columns 3 and 4 the bounds
// in either order.  ok is false for rows that are too short or hold
// non-integer bounds; the caller skips those.
func parseFields(fields []string) (iv Interval, ok bool) {
	if len(fields) < 5 {
		return Interval{}, false
	}
	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return Interval{}, false
	}
	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return Interval{}, false
	}
	return Interval{ID: fields[0], Sequence: fields[2], Start: start, End: end}, true
}

// ReadSet parses a BUSCO-style full table into a Set.  Rows whose first
// column starts with '#' are comments.  Malformed rows are skipped, not
// surfaced; the skip count is logged at debug level.
func ReadSet(r io.Reader) (*Set, error) {
	set := NewSet()
	skipped := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if strings.HasPrefix(fields[0], "#") {
			continue
		}
		iv, ok := parseFields(fields)
		if !ok {
			skipped++
			continue
		}
		set.Add(iv.ID, iv.Sequence, iv.Start, iv.End)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Debug.Printf("overlap.ReadSet: skipped %d malformed row(s)", skipped)
	}
	return set, nil
}

// ReadSetFromPath is a wrapper for ReadSet that takes a path instead of an
// io.Reader.  Gzip-compressed input is detected by suffix.
func ReadSetFromPath(path string) (set *Set, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadSet(reader)
}

// ByOverlap returns a copy of results sorted descending by overlap length.
// Ties keep their original order.
func ByOverlap(results []Result) []Result {
	sorted := append([]Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Overlap > sorted[j].Overlap
	})
	return sorted
}

// WriteTSV writes one line per result, ranked descending by overlap length:
// id1, id2 (empty when there was no partner), overlap length, and the two
// non-overlapping remainders.
func WriteTSV(w io.Writer, results []Result) error {
	tsvw := tsv.NewWriter(w)
	for _, r := range ByOverlap(results) {
		tsvw.WriteString(r.ID1)
		tsvw.WriteString(r.ID2)
		tsvw.WriteInt64(int64(r.Overlap))
		tsvw.WriteInt64(int64(r.Outside1))
		tsvw.WriteInt64(int64(r.Outside2))
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

// WriteTSVToPath is a wrapper for WriteTSV that takes a path instead of an
// io.Writer.
func WriteTSVToPath(path string, results []Result) (err error) {
	ctx := vcontext.Background()
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := out.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteTSV(out.Writer(ctx), results)
}
