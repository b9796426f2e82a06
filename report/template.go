// Package report loads the declarative YAML "types" templates that drive the
// pipeline's tabular reports.  A template names its output file, maps field
// names to source-table columns and, after {placeholder} substitution, is
// written back out alongside the TSV as a .types.yaml sidecar, so key order
// must survive the round trip.
package report

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// A Template is an order-preserving view of one types file.
type Template struct {
	doc yaml.MapSlice
}

// Load reads and parses the template at path.
func Load(path string) (*Template, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "report: template %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "report: template %s", path)
	}
	return t, nil
}

// Parse parses template bytes.
func Parse(data []byte) (*Template, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}
	return &Template{doc: doc}, nil
}

// Substitute replaces {name} placeholders with the given values in every
// string field, recursively through nested mappings and sequences.  Unknown
// placeholders are left intact so a later pass can fill them; the importer
// substitutes {span} only after the rows have been parsed.
func (t *Template) Substitute(vars map[string]string) {
	t.doc = substituteValue(t.doc, vars).(yaml.MapSlice)
}

func substituteValue(v interface{}, vars map[string]string) interface{} {
	switch v := v.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, len(v))
		for i, item := range v {
			out[i] = yaml.MapItem{Key: item.Key, Value: substituteValue(item.Value, vars)}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = substituteValue(item, vars)
		}
		return out
	case string:
		for name, val := range vars {
			v = strings.Replace(v, "{"+name+"}", val, -1)
		}
		return v
	default:
		return v
	}
}

// Meta is the template's "file" section.
type Meta struct {
	Name   string
	Format string
	Header bool
}

// Meta returns the file section.  Format defaults to "tsv".
func (t *Template) Meta() Meta {
	m := Meta{Format: "tsv"}
	sec, _ := t.Section("file").(yaml.MapSlice)
	for _, item := range sec {
		switch itemKey(item) {
		case "name":
			m.Name, _ = item.Value.(string)
		case "format":
			if s, ok := item.Value.(string); ok {
				m.Format = s
			}
		case "header":
			m.Header, _ = item.Value.(bool)
		}
	}
	return m
}

// Section returns the value stored under the given top-level key, or nil.
func (t *Template) Section(name string) interface{} {
	for _, item := range t.doc {
		if itemKey(item) == name {
			return item.Value
		}
	}
	return nil
}

// A Column describes how one report column is derived from a source row.
// Index is -1 when the template gives no source column; such columns are
// filled by the caller (feature_type).
type Column struct {
	Field     string
	Header    string
	Index     int
	Separator string
}

// Columns returns the column specs of every field section, in template
// order.  Top-level entries that are not mappings of field specs ("file",
// "file_paths", scalar metadata) are not columns.
func (t *Template) Columns() []Column {
	var cols []Column
	for _, sec := range t.doc {
		name := itemKey(sec)
		if name == "file" || name == "file_paths" {
			continue
		}
		fields, ok := sec.Value.(yaml.MapSlice)
		if !ok {
			continue
		}
		for _, f := range fields {
			spec, ok := f.Value.(yaml.MapSlice)
			if !ok {
				continue
			}
			col := Column{Field: itemKey(f), Header: itemKey(f), Index: -1}
			for _, item := range spec {
				switch itemKey(item) {
				case "header":
					if s, ok := item.Value.(string); ok {
						col.Header = s
					}
				case "index":
					if n, ok := item.Value.(int); ok {
						col.Index = n
					}
				case "separator":
					col.Separator, _ = item.Value.(string)
				}
			}
			cols = append(cols, col)
		}
	}
	return cols
}

// Headers returns the report's column headers in template order.
func (t *Template) Headers() []string {
	cols := t.Columns()
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}
	return headers
}

// ParseRow maps one tab-separated source line to header -> value.  Columns
// without a source index are left unset; a separator splits the source value
// into a list.  Missing columns yield empty values.
func ParseRow(cols []Column, line string) map[string]interface{} {
	fields := strings.Split(line, "\t")
	row := make(map[string]interface{})
	for _, col := range cols {
		if col.Index < 0 {
			continue
		}
		var v string
		if col.Index < len(fields) {
			v = strings.TrimSpace(fields[col.Index])
		}
		if col.Separator != "" && v != "" {
			row[col.Header] = strings.Split(v, col.Separator)
		} else {
			row[col.Header] = v
		}
	}
	return row
}

// WriteYAML writes the (substituted) template to path, preserving key order.
func (t *Template) WriteYAML(path string) error {
	data, err := yaml.Marshal(t.doc)
	if err != nil {
		return errors.Wrap(err, "report: marshaling template")
	}
	return errors.Wrapf(ioutil.WriteFile(path, data, 0644), "report: writing %s", path)
}

// SidecarName derives the .types.yaml sidecar name from the report file
// name: window_stats.tsv.gz -> window_stats.types.yaml.
func SidecarName(name string) string {
	name = strings.Replace(name, ".tsv", ".types.yaml", -1)
	return strings.Replace(name, ".gz", "", -1)
}

func itemKey(item yaml.MapItem) string {
	s, _ := item.Key.(string)
	return s
}
