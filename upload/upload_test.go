package upload

import (
	"archive/tar"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomehubs/assembly-tools/storage"
	"github.com/genomehubs/assembly-tools/storage/storagetest"
)

func TestParseVars(t *testing.T) {
	vars, err := ParseVars([]string{"assembly_id=GCA_1", "span=12=34"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"assembly_id": "GCA_1", "span": "12=34"}, vars)

	_, err = ParseVars([]string{"no-equals"})
	assert.Error(t, err)
	_, err = ParseVars([]string{"=value"})
	assert.Error(t, err)
}

func TestSubstitute(t *testing.T) {
	got, err := Substitute("latest/{assembly_id}/{assembly_id}.tsv", map[string]string{"assembly_id": "GCA_1"})
	require.NoError(t, err)
	assert.Equal(t, "latest/GCA_1/GCA_1.tsv", got)

	// Every placeholder must be bound.
	_, err = Substitute("latest/{assembly_id}/stats.tsv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assembly_id")
}

func TestPackNoop(t *testing.T) {
	got, temp, err := Pack("dir/stats.tsv", "latest/GCA_1/stats.tsv")
	require.NoError(t, err)
	assert.False(t, temp)
	assert.Equal(t, "dir/stats.tsv", got)

	// Already compressed, nothing to do.
	got, temp, err = Pack("dir/table.tsv.gz", "latest/table.tsv.gz")
	require.NoError(t, err)
	assert.False(t, temp)
	assert.Equal(t, "dir/table.tsv.gz", got)
}

func TestPackGzip(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "upload")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)
	src := filepath.Join(tmpDir, "table.tsv")
	require.NoError(t, ioutil.WriteFile(src, []byte("a\tb\n"), 0644))

	packed, temp, err := Pack(src, "latest/table.tsv.gz")
	require.NoError(t, err)
	require.True(t, temp)
	defer os.Remove(packed)

	f, err := os.Open(packed)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", string(data))
}

func TestPackTarGzip(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "upload")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)
	dir := filepath.Join(tmpDir, "blobdir")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "meta.json"), []byte("{}"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "gc.json"), []byte("[]"), 0644))

	packed, temp, err := Pack(dir, "latest/GCA_1/blobdir.tar.gz")
	require.NoError(t, err)
	require.True(t, temp)
	defer os.Remove(packed)

	f, err := os.Open(packed)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	// Entry names are relative to the parent directory.
	assert.Equal(t, []string{"blobdir/", "blobdir/gc.json", "blobdir/meta.json"}, names)
}

func TestRun(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "upload")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(tmpDir, "GCA_1.stats.tsv"), []byte("a\tb\n"), 0644))

	m := &Manifest{Files: []File{
		{
			Filename:           "{assembly_id}.stats.tsv",
			S3Path:             "latest/{assembly_id}/stats.tsv",
			MimeType:           "text/tab-separated-values",
			ContentDisposition: "attachment",
		},
		// Missing locally, skipped without error.
		{
			Filename: "{assembly_id}.busco.tsv",
			S3Path:   "latest/{assembly_id}/busco.tsv",
		},
	}}
	fake := storagetest.New(nil)
	store := storage.NewWithAPI(fake)
	vars := map[string]string{"assembly_id": "GCA_1"}

	require.NoError(t, Run(store, m, "bkt", tmpDir, vars))
	assert.Equal(t, []byte("a\tb\n"), fake.Objects["latest/GCA_1/stats.tsv"])
	assert.Equal(t, "text/tab-separated-values", fake.ContentTypes["latest/GCA_1/stats.tsv"])
	_, ok := fake.Objects["latest/GCA_1/busco.tsv"]
	assert.False(t, ok)
}

func TestRunUnboundVar(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "upload")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	m := &Manifest{Files: []File{{Filename: "{assembly_id}.stats.tsv", S3Path: "x"}}}
	store := storage.NewWithAPI(storagetest.New(nil))
	assert.Error(t, Run(store, m, "bkt", tmpDir, nil))
}

func TestLoadManifest(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "upload")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, "manifest.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`files:
  - filename: "{assembly_id}.stats.tsv"
    s3path: "latest/{assembly_id}/stats.tsv"
    mime_type: text/tab-separated-values
    content_disposition: attachment
`), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Files, 1)
	assert.Equal(t, "{assembly_id}.stats.tsv", m.Files[0].Filename)
	assert.Equal(t, "attachment", m.Files[0].ContentDisposition)

	_, err = LoadManifest(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)
}
