// Package upload pushes local analysis files to an S3 bucket as described by
// a YAML manifest.  Manifest filenames and destination paths may contain
// {variable} placeholders bound on the command line.
package upload

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// File describes one manifest entry.
type File struct {
	Filename           string `yaml:"filename"`
	S3Path             string `yaml:"s3path"`
	MimeType           string `yaml:"mime_type"`
	ContentDisposition string `yaml:"content_disposition"`
}

// Manifest lists the files to upload.
type Manifest struct {
	Files []File `yaml:"files"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "upload: reading manifest")
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "upload: parsing manifest %s", path)
	}
	return m, nil
}

// ParseVars parses key=value command-line arguments into a substitution map.
func ParseVars(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, arg := range args {
		i := strings.Index(arg, "=")
		if i <= 0 {
			return nil, errors.Errorf("upload: malformed variable %q, want key=value", arg)
		}
		vars[arg[:i]] = arg[i+1:]
	}
	return vars, nil
}

// Substitute replaces every {key} placeholder in s.  Unlike report templates,
// every placeholder must be bound; a leftover one is an error.
func Substitute(s string, vars map[string]string) (string, error) {
	for k, v := range vars {
		s = strings.Replace(s, "{"+k+"}", v, -1)
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.Index(s[i:], "}"); j > 0 {
			name := s[i+1 : i+j]
			return "", errors.Errorf("upload: no value for variable {%s}, pass %s=value", name, name)
		}
	}
	return s, nil
}
