package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// WriteTSV writes rows under the given column specs to path, gzip-compressed
// when the name ends in ".gz".  List values are joined with the column's
// separator (comma when the template gives none); absent values become empty
// columns.
func WriteTSV(path string, cols []Column, rows []map[string]interface{}, writeHeader bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = gz
	}
	tsvw := tsv.NewWriter(w)
	if writeHeader {
		for _, col := range cols {
			tsvw.WriteString(col.Header)
		}
		if err := tsvw.EndLine(); err != nil {
			return errors.Wrapf(err, "report: writing %s", path)
		}
	}
	for _, row := range rows {
		for _, col := range cols {
			tsvw.WriteString(formatValue(row[col.Header], col.Separator))
		}
		if err := tsvw.EndLine(); err != nil {
			return errors.Wrapf(err, "report: writing %s", path)
		}
	}
	return errors.Wrapf(tsvw.Flush(), "report: writing %s", path)
}

func formatValue(v interface{}, sep string) string {
	if sep == "" {
		sep = ","
	}
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, sep)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(v)
	}
}
