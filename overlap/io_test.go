package overlap

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

const testTable = `# Busco id	Status	Sequence	Gene Start	Gene End	Score	Length
100at2759	Complete	chr1	1000	2000	95.0	1000
101at2759	Complete	chr2	5000	3000	88.5	2000
102at2759	Missing
103at2759	Complete	chr3	notanumber	9000	12.0	100
104at2759	Complete	chr3	7000	8000	50.0	1000
`

func TestReadSet(t *testing.T) {
	set, err := ReadSet(strings.NewReader(testTable))
	expect.NoError(t, err)
	expect.EQ(t, set.Len(), 3)

	// Comment line skipped, short row skipped, non-integer bounds skipped,
	// reversed bounds normalized.
	want := []Interval{
		{ID: "100at2759", Sequence: "chr1", Start: 1000, End: 2000},
		{ID: "101at2759", Sequence: "chr2", Start: 3000, End: 5000},
		{ID: "104at2759", Sequence: "chr3", Start: 7000, End: 8000},
	}
	expect.EQ(t, set.Intervals(), want)
}

func TestReadSetDuplicateID(t *testing.T) {
	input := "dup\tComplete\tchr1\t10\t20\t0\t10\n" +
		"other\tComplete\tchr1\t30\t40\t0\t10\n" +
		"dup\tComplete\tchr9\t50\t60\t0\t10\n"
	set, err := ReadSet(strings.NewReader(input))
	expect.NoError(t, err)
	expect.EQ(t, set.Len(), 2)
	iv, ok := set.Get("dup")
	expect.True(t, ok)
	expect.EQ(t, iv, Interval{ID: "dup", Sequence: "chr9", Start: 50, End: 60})
}

func TestByOverlapStable(t *testing.T) {
	results := []Result{
		{ID1: "a", ID2: "p", Overlap: 5},
		{ID1: "b", ID2: "q", Overlap: 10},
		{ID1: "c", ID2: "r", Overlap: 5},
		{ID1: "d", ID2: "s", Overlap: 10},
	}
	sorted := ByOverlap(results)

	wantOrder := []string{"b", "d", "a", "c"}
	for i, want := range wantOrder {
		if sorted[i].ID1 != want {
			t.Errorf("position %d: got %s, want %s", i, sorted[i].ID1, want)
		}
	}
	// The input slice is left untouched.
	if results[0].ID1 != "a" {
		t.Errorf("input mutated: %v", results)
	}
}

func TestWriteTSV(t *testing.T) {
	results := []Result{
		{ID1: "a", ID2: "", Overlap: 0, Outside1: 10, Outside2: 0},
		{ID1: "b", ID2: "y", Overlap: 7, Outside1: 3, Outside2: 2},
	}
	var buf bytes.Buffer
	expect.NoError(t, WriteTSV(&buf, results))

	want := "b\ty\t7\t3\t2\na\t\t0\t10\t0\n"
	expect.EQ(t, buf.String(), want)
}

// Writing results and re-parsing the five columns recovers the same tuples.
func TestWriteTSVRoundTrip(t *testing.T) {
	results := []Result{
		{ID1: "a", ID2: "x", Overlap: 12, Outside1: 4, Outside2: 9},
		{ID1: "b", ID2: "", Overlap: 0, Outside1: 77, Outside2: 0},
		{ID1: "c", ID2: "z", Overlap: 3, Outside1: 0, Outside2: 1},
	}
	var buf bytes.Buffer
	expect.NoError(t, WriteTSV(&buf, results))

	var parsed []Result
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) != 5 {
			t.Fatalf("line %q: got %d columns, want 5", line, len(cols))
		}
		ov, err := strconv.Atoi(cols[2])
		expect.NoError(t, err)
		n1, err := strconv.Atoi(cols[3])
		expect.NoError(t, err)
		n2, err := strconv.Atoi(cols[4])
		expect.NoError(t, err)
		parsed = append(parsed, Result{ID1: cols[0], ID2: cols[1], Overlap: ov, Outside1: n1, Outside2: n2})
	}
	if !reflect.DeepEqual(parsed, ByOverlap(results)) {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, ByOverlap(results))
	}
}
