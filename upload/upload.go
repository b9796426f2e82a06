package upload

import (
	"os"
	"path/filepath"

	"github.com/grailbio/base/log"

	"github.com/genomehubs/assembly-tools/storage"
)

// Run uploads every manifest entry to the bucket.  Filenames and destination
// paths are substituted with vars before use; an entry whose local file does
// not exist is reported and skipped.  Each object is uploaded in a single
// attempt, with no retry on failure.
func Run(store *storage.Client, m *Manifest, bucket, dir string, vars map[string]string) error {
	for _, f := range m.Files {
		name, err := Substitute(f.Filename, vars)
		if err != nil {
			return err
		}
		local := filepath.Join(dir, name)
		if _, err := os.Stat(local); err != nil {
			log.Error.Printf("upload: %s not found, skipping", local)
			continue
		}
		key, err := Substitute(f.S3Path, vars)
		if err != nil {
			return err
		}
		packed, temp, err := Pack(local, key)
		if err != nil {
			return err
		}
		err = put(store, bucket, key, packed, f.MimeType, f.ContentDisposition)
		if temp {
			os.Remove(packed)
		}
		if err != nil {
			return err
		}
		log.Printf("upload: %s -> s3://%s/%s", local, bucket, key)
	}
	return nil
}

func put(store *storage.Client, bucket, key, path, mimeType, disposition string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Upload(bucket, key, f, mimeType, disposition)
}
