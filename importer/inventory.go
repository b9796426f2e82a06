package importer

import (
	"path/filepath"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/genomehubs/assembly-tools/report"
)

// Inventory probes every assembly directory for the analysis files named in
// the template's file_paths section and writes one report row per assembly.
// The attribute name prefixes the per-analysis columns (files.busco.all,
// files.busco.run, ...).
func (im *Importer) Inventory(templatePath, attribute string) error {
	tmpl, err := report.Load(templatePath)
	if err != nil {
		return err
	}
	filePaths, _ := tmpl.Section("file_paths").(yaml.MapSlice)
	if filePaths == nil {
		return errors.Errorf("importer: %s has no file_paths section", templatePath)
	}
	dirs, err := im.store.DirsByPrefix(im.cfg.Bucket, im.cfg.Prefix)
	if err != nil {
		return err
	}
	var rows []map[string]interface{}
	for _, dir := range dirs {
		subdirs, err := im.store.Subdirs(im.cfg.Bucket, dir)
		if err != nil {
			return err
		}
		entry, err := im.assemblyEntry(dir, subdirs, filePaths, attribute)
		if err != nil {
			return err
		}
		rows = append(rows, entry)
	}
	meta := tmpl.Meta()
	if meta.Name == "" {
		return errors.Errorf("importer: %s names no output file", templatePath)
	}
	out := filepath.Join(im.cfg.OutDir, meta.Name)
	log.Printf("importer: writing inventory %s (%d assemblies)", out, len(rows))
	return report.WriteTSV(out, tmpl.Columns(), rows, meta.Header)
}

// assemblyEntry builds one inventory row.  Values are string lists; the TSV
// writer joins them with commas.
func (im *Importer) assemblyEntry(dir string, subdirs []string, filePaths yaml.MapSlice, attribute string) (map[string]interface{}, error) {
	entry := map[string]interface{}{
		"assembly_id": []string{assemblyID(dir)},
	}
	var info struct {
		TaxonID interface{} `json:"taxon_id"`
	}
	if err := im.store.GetJSON(im.cfg.Bucket, dir+"assembly_info.json", &info); err != nil {
		return nil, err
	}
	entry["taxon_id"] = []string{stringify(info.TaxonID)}

	for _, subdir := range subdirs {
		spec := mapAt(filePaths, subdir)
		if spec == nil {
			continue
		}
		var runs []string
		if hasKey(spec, "all") {
			runs = []string{"all"}
		} else {
			var err error
			runs, err = im.store.Subdirs(im.cfg.Bucket, dir+subdir+"/")
			if err != nil {
				return nil, err
			}
		}
		for _, f := range spec {
			fileSpec, ok := f.Value.(yaml.MapSlice)
			if !ok {
				continue
			}
			name := stringAt(fileSpec, "name")
			if name == "" {
				continue
			}
			for _, run := range runs {
				if err := im.probeRun(dir, subdir, run, keyOf(f), name, attribute, entry); err != nil {
					return nil, err
				}
			}
		}
		if len(listAt(entry, attribute+"."+subdir+".run")) > 0 {
			appendTo(entry, attribute, subdir)
		}
	}
	return entry, nil
}

// probeRun records the file key under <attribute>.<subdir>.<run> when the
// expected object exists, and tracks the run name (or, for run "all", the
// analysis-reported run id) under <attribute>.<subdir>.run.  A missing
// object is skipped silently.
func (im *Importer) probeRun(dir, subdir, run, key, name, attribute string, entry map[string]interface{}) error {
	probe := dir + subdir + "/" + name
	if run != "all" {
		probe = dir + subdir + "/" + run + "/" + name
	}
	ok, err := im.store.Exists(im.cfg.Bucket, probe)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	appendTo(entry, attribute+"."+subdir+"."+run, key)

	runKey := attribute + "." + subdir + ".run"
	if run == "all" {
		if len(listAt(entry, runKey)) == 0 {
			id, err := im.runValue(subdir, dir+subdir+"/")
			if err != nil {
				return err
			}
			appendTo(entry, runKey, id)
		}
	} else if !contains(listAt(entry, runKey), run) {
		appendTo(entry, runKey, run)
	}
	return nil
}

// runValue resolves the run identifier for analyses that report one of their
// own; blobtoolkit stores it in the blobdir metadata.
func (im *Importer) runValue(analysis, prefix string) (string, error) {
	if analysis != "blobtoolkit" {
		return "", nil
	}
	var meta struct {
		ID string `json:"id"`
	}
	if err := im.store.GetJSON(im.cfg.Bucket, prefix+"blobdir/meta.json.gz", &meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func appendTo(entry map[string]interface{}, key, value string) {
	entry[key] = append(listAt(entry, key), value)
}

func listAt(entry map[string]interface{}, key string) []string {
	list, _ := entry[key].([]string)
	return list
}

func mapAt(doc yaml.MapSlice, key string) yaml.MapSlice {
	for _, item := range doc {
		if keyOf(item) == key {
			m, _ := item.Value.(yaml.MapSlice)
			return m
		}
	}
	return nil
}

func hasKey(doc yaml.MapSlice, key string) bool {
	for _, item := range doc {
		if keyOf(item) == key {
			return true
		}
	}
	return false
}

func stringAt(doc yaml.MapSlice, key string) string {
	for _, item := range doc {
		if keyOf(item) == key {
			s, _ := item.Value.(string)
			return s
		}
	}
	return ""
}

func keyOf(item yaml.MapItem) string {
	s, _ := item.Key.(string)
	return s
}
