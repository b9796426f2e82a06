// Package importer turns analysis output files held in an assembly bucket
// into TSV + .types.yaml report pairs driven by declarative templates.  Each
// assembly directory is expected to hold an assembly_info.json sidecar plus
// per-analysis subdirectories (stats/, busco/<lineage>/, ...).
package importer

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/genomehubs/assembly-tools/report"
	"github.com/genomehubs/assembly-tools/storage"
)

// Config locates the bucket contents and the template directory.
type Config struct {
	Bucket string
	Prefix string
	// ConfigDir holds the TEMPLATE_<name>.yaml files.
	ConfigDir string
	// OutDir receives the report pairs; empty means the current directory.
	OutDir string
}

// Importer drives the per-assembly imports.
type Importer struct {
	store *storage.Client
	cfg   Config
}

// New returns an Importer reading through the given client.
func New(store *storage.Client, cfg Config) *Importer {
	return &Importer{store: store, cfg: cfg}
}

// Run walks the assembly directories under the configured prefix and imports
// window-stats and BUSCO tables for each.  Assemblies without a stats/
// subdirectory are skipped.
func (im *Importer) Run() error {
	dirs, err := im.store.DirsByPrefix(im.cfg.Bucket, im.cfg.Prefix)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		subdirs, err := im.store.Subdirs(im.cfg.Bucket, dir)
		if err != nil {
			return err
		}
		if !contains(subdirs, "stats") {
			log.Debug.Printf("importer: %s has no stats directory, skipping", dir)
			continue
		}
		vars, err := im.assemblyVars(dir)
		if err != nil {
			return err
		}
		if err := im.processWindowStats(dir, vars); err != nil {
			return err
		}
		if err := im.processBusco(dir, vars); err != nil {
			return err
		}
	}
	return nil
}

// assemblyVars loads assembly_info.json and flattens it into substitution
// variables, adding assembly_id from the directory name.
func (im *Importer) assemblyVars(dir string) (map[string]string, error) {
	var info map[string]interface{}
	if err := im.store.GetJSON(im.cfg.Bucket, dir+"assembly_info.json", &info); err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(info)+1)
	for k, v := range info {
		vars[k] = stringify(v)
	}
	vars["assembly_id"] = assemblyID(dir)
	return vars, nil
}

// processWindowStats imports the sequence-level stats table and every
// per-window table under stats/.  The sequence-level table's total span is
// substituted back into its template before the sidecar is written.
func (im *Importer) processWindowStats(dir string, vars map[string]string) error {
	files, err := im.store.List(im.cfg.Bucket, dir+"stats/", false)
	if err != nil {
		return err
	}
	type windowFile struct {
		size string
		key  string
	}
	var windows []windowFile
	for _, f := range files {
		if !strings.Contains(f, "window_stats") {
			continue
		}
		if size := extractBetween(f, "window_stats.", ".tsv"); size != "" {
			windows = append(windows, windowFile{size: size, key: f})
			continue
		}
		tmpl, err := im.loadTemplate("window_stats", vars)
		if err != nil {
			return err
		}
		rows, err := im.parseTSV(tmpl, f, []string{"chromosome", "toplevel", "sequence"}, 0)
		if err != nil {
			return err
		}
		span := 0
		for _, row := range rows {
			n, err := strconv.Atoi(formatted(row["length"]))
			if err != nil {
				return errors.Wrapf(err, "importer: bad length in %s", f)
			}
			span += n
		}
		tmpl.Substitute(map[string]string{"span": strconv.Itoa(span)})
		if err := im.writePair(tmpl, rows); err != nil {
			return err
		}
	}
	for _, wf := range windows {
		wvars := merged(vars, "window", wf.size)
		tmpl, err := im.loadTemplate("window_stats.WINDOW", wvars)
		if err != nil {
			return err
		}
		rows, err := im.parseTSV(tmpl, wf.key, []string{"window-" + wf.size, "window"}, 0)
		if err != nil {
			return err
		}
		if err := im.writePair(tmpl, rows); err != nil {
			return err
		}
	}
	return nil
}

// processBusco imports busco/<lineage>/full_table.tsv for every lineage,
// dropping Missing genes.  The first two lines of a full table are headers.
func (im *Importer) processBusco(dir string, vars map[string]string) error {
	lineages, err := im.store.Subdirs(im.cfg.Bucket, dir+"busco/")
	if err != nil {
		return err
	}
	for _, lineage := range lineages {
		tmpl, err := im.loadTemplate("busco", merged(vars, "lineage", lineage))
		if err != nil {
			return err
		}
		featureType := []string{lineage + "-busco-gene", "busco-gene", "gene"}
		rows, err := im.parseTSV(tmpl, dir+"busco/"+lineage+"/full_table.tsv", featureType, 2)
		if err != nil {
			return err
		}
		kept := rows[:0]
		for _, row := range rows {
			if formatted(row["status"]) != "Missing" {
				kept = append(kept, row)
			}
		}
		if err := im.writePair(tmpl, kept); err != nil {
			return err
		}
	}
	return nil
}

// loadTemplate reads TEMPLATE_<name>.yaml from the config directory and
// substitutes the assembly variables.  A missing template is an error the
// CLIs treat as fatal.
func (im *Importer) loadTemplate(name string, vars map[string]string) (*report.Template, error) {
	tmpl, err := report.Load(filepath.Join(im.cfg.ConfigDir, "TEMPLATE_"+name+".yaml"))
	if err != nil {
		return nil, err
	}
	tmpl.Substitute(vars)
	return tmpl, nil
}

// parseTSV reads the table at key and applies the template's column specs to
// each line, tagging every row with the given feature types.
func (im *Importer) parseTSV(tmpl *report.Template, key string, featureType []string, skip int) ([]map[string]interface{}, error) {
	lines, err := im.store.Lines(im.cfg.Bucket, key, skip)
	if err != nil {
		return nil, err
	}
	cols := tmpl.Columns()
	var rows []map[string]interface{}
	for _, line := range lines {
		if line == "" {
			continue
		}
		row := report.ParseRow(cols, line)
		if featureType != nil {
			row["feature_type"] = featureType
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writePair writes the TSV named by the template's file section plus its
// .types.yaml sidecar.
func (im *Importer) writePair(tmpl *report.Template, rows []map[string]interface{}) error {
	meta := tmpl.Meta()
	if meta.Name == "" {
		return errors.New("importer: template names no output file")
	}
	if err := tmpl.WriteYAML(filepath.Join(im.cfg.OutDir, report.SidecarName(meta.Name))); err != nil {
		return err
	}
	tsvPath := filepath.Join(im.cfg.OutDir, meta.Name)
	log.Printf("importer: writing %s (%d rows)", tsvPath, len(rows))
	return report.WriteTSV(tsvPath, tmpl.Columns(), rows, meta.Header)
}

// extractBetween returns the substring between the first occurrences of a
// and b, or "" when the markers are absent or out of order.  Window sizes
// are encoded in stats file names as "...window_stats.<size>.tsv...".
func extractBetween(s, a, b string) string {
	ia := strings.Index(s, a)
	ib := strings.Index(s, b)
	if ia < 0 || ib < 0 {
		return ""
	}
	start := ia + len(a)
	if start >= ib {
		return ""
	}
	return s[start:ib]
}

// assemblyID extracts the assembly accession from a directory prefix like
// "latest/GCA_964016885.1/".
func assemblyID(dir string) string {
	return path.Base(strings.TrimSuffix(dir, "/"))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func merged(vars map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	out[key] = value
	return out
}

func stringify(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		// JSON numbers; taxon ids are integral.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return formatted(v)
	}
}

func formatted(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
