package main

import (
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"

	"github.com/genomehubs/assembly-tools/storage"
)

func newCmdRename() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "rename",
		Short:    "Rename an assembly accession in place",
		ArgsName: "from to",
	}
	bucket := cmd.Flags.String("bucket", "molluscdb", "Bucket holding the assembly directories")
	prefix := cmd.Flags.String("prefix", "latest", "Key prefix under which one directory per assembly lives")
	endpoint := cmd.Flags.String("url", "https://cog.sanger.ac.uk", "S3 endpoint URL")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return errors.Errorf("rename takes two accession arguments, but got %v", argv)
		}
		store, err := storage.New(*endpoint)
		if err != nil {
			return err
		}
		return rename(store, *bucket, *prefix, argv[0], argv[1])
	})
	return cmd
}

// rename copies every object under the old accession's directory to the new
// one, then deletes the originals.  Copies are not transactional; a failure
// partway leaves both directories in place.
func rename(store *storage.Client, bucket, prefix, from, to string) error {
	keys, err := store.List(bucket, prefix+"/"+from+"/", true)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return errors.Errorf("rename: no objects under %s/%s/", prefix, from)
	}
	for _, key := range keys {
		if err := store.Copy(bucket, key, strings.Replace(key, from, to, -1)); err != nil {
			return err
		}
		if err := store.Delete(bucket, key); err != nil {
			return err
		}
	}
	return nil
}
