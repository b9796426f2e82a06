package overlap

import (
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByCoverage(t *testing.T) {
	results := []Result{
		{ID1: "a", Overlap: 5, Outside1: 1},
		{ID1: "b", Overlap: 2, Outside1: 10},
		{ID1: "c", Overlap: 4, Outside1: 2},
	}
	sorted := byCoverage(results)
	assert.Equal(t, "b", sorted[0].ID1)
	assert.Equal(t, "a", sorted[1].ID1)
	assert.Equal(t, "c", sorted[2].ID1)
	// Original order untouched.
	assert.Equal(t, "a", results[0].ID1)
}

func TestRenderPNG(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "overlap")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	results := []Result{
		{ID1: "a", ID2: "x", Overlap: 50, Outside1: 10, Outside2: 30},
		{ID1: "b", ID2: "", Overlap: 0, Outside1: 70, Outside2: 0},
	}
	path := filepath.Join(tmpDir, "out.png")
	require.NoError(t, RenderPNG(results, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.True(t, img.Bounds().Dx() > 0)
}

func TestRenderPNGEmpty(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "overlap")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// An empty result set renders an empty chart rather than failing.
	path := filepath.Join(tmpDir, "empty.png")
	require.NoError(t, RenderPNG(nil, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
