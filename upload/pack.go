package upload

import (
	"archive/tar"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Pack prepares the local file or directory at path for upload under s3path.
// When the destination name implies an archive or compression the source
// lacks (.tar.gz, .tar, .gz), the source is packed into a temporary file
// whose path is returned along with true; the caller removes it after the
// upload.  Otherwise path is returned unchanged.
func Pack(path, s3path string) (string, bool, error) {
	switch {
	case strings.HasSuffix(s3path, ".tar.gz") && !strings.HasSuffix(path, ".tar.gz"):
		return packTemp(path, ".tar.gz", func(w io.Writer) error {
			gz := gzip.NewWriter(w)
			if err := writeTar(gz, path); err != nil {
				gz.Close()
				return err
			}
			return gz.Close()
		})
	case strings.HasSuffix(s3path, ".tar") && !strings.HasSuffix(path, ".tar"):
		return packTemp(path, ".tar", func(w io.Writer) error {
			return writeTar(w, path)
		})
	case strings.HasSuffix(s3path, ".gz") && !strings.HasSuffix(path, ".gz"):
		return packTemp(path, ".gz", func(w io.Writer) error {
			return gzipFile(w, path)
		})
	}
	return path, false, nil
}

func packTemp(path, suffix string, write func(io.Writer) error) (string, bool, error) {
	tmp, err := ioutil.TempFile("", "upload-*"+suffix)
	if err != nil {
		return "", false, err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", false, errors.Wrapf(err, "upload: packing %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", false, err
	}
	return tmp.Name(), true, nil
}

// writeTar archives path with entry names relative to its parent directory,
// matching what tar -C <parent> would produce.
func writeTar(w io.Writer, path string) error {
	tw := tar.NewWriter(w)
	parent := filepath.Dir(path)
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, p)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		f.Close()
		return err
	})
	if err != nil {
		return err
	}
	return tw.Close()
}

func gzipFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	gz := gzip.NewWriter(w)
	if _, err := io.Copy(gz, f); err != nil {
		return err
	}
	return gz.Close()
}
