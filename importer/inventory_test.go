package importer

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filesTemplate = `file:
  name: files.tsv
  format: tsv
  header: true
identifiers:
  assembly_id:
    header: assembly_id
attributes:
  taxon_id:
    header: taxon_id
  files:
    header: files
  files.blobtoolkit.all:
    header: files.blobtoolkit.all
  files.blobtoolkit.run:
    header: files.blobtoolkit.run
  files.busco.eukaryota:
    header: files.busco.eukaryota
  files.busco.run:
    header: files.busco.run
file_paths:
  busco:
    full_table:
      name: full_table.tsv
    short_summary:
      name: short_summary.txt
  blobtoolkit:
    all: true
    meta:
      name: blobdir/meta.json.gz
`

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestInventory(t *testing.T) {
	objects := map[string][]byte{
		"latest/GCA_1/assembly_info.json":               []byte(`{"taxon_id": 9606}`),
		"latest/GCA_1/busco/eukaryota/full_table.tsv":   []byte("busco1\tComplete\n"),
		"latest/GCA_1/blobtoolkit/blobdir/meta.json.gz": gzipBytes(t, []byte(`{"id":"GCA_1_run1"}`)),
		// No probed files at all, still gets a row.
		"latest/GCA_2/assembly_info.json": []byte(`{"taxon_id": 1}`),
	}
	im, outDir, cleanup := testImporter(t, objects, nil)
	defer cleanup()

	templatePath := filepath.Join(outDir, "TEMPLATE_files.yaml")
	require.NoError(t, ioutil.WriteFile(templatePath, []byte(filesTemplate), 0644))

	require.NoError(t, im.Inventory(templatePath, "files"))

	data, err := ioutil.ReadFile(filepath.Join(outDir, "files.tsv"))
	require.NoError(t, err)
	want := "assembly_id\ttaxon_id\tfiles\tfiles.blobtoolkit.all\tfiles.blobtoolkit.run\tfiles.busco.eukaryota\tfiles.busco.run\n" +
		"GCA_1\t9606\tblobtoolkit,busco\tmeta\tGCA_1_run1\tfull_table\teukaryota\n" +
		"GCA_2\t1\t\t\t\t\t\n"
	assert.Equal(t, want, string(data))
}

func TestInventoryNoFilePaths(t *testing.T) {
	im, outDir, cleanup := testImporter(t, map[string][]byte{
		"latest/GCA_1/assembly_info.json": []byte(`{"taxon_id": 9606}`),
	}, nil)
	defer cleanup()

	templatePath := filepath.Join(outDir, "TEMPLATE_files.yaml")
	require.NoError(t, ioutil.WriteFile(templatePath, []byte("file:\n  name: files.tsv\n"), 0644))

	assert.Error(t, im.Inventory(templatePath, "files"))
}
