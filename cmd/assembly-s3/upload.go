package main

import (
	"github.com/grailbio/base/cmdutil"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"

	"github.com/genomehubs/assembly-tools/storage"
	"github.com/genomehubs/assembly-tools/upload"
)

func newCmdUpload() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "upload",
		Short:    "Upload local files to the bucket per a YAML manifest",
		ArgsName: "[key=value ...]",
	}
	manifest := cmd.Flags.String("config", "", "YAML manifest listing the files to upload")
	dir := cmd.Flags.String("directory", ".", "Directory holding the local files")
	bucket := cmd.Flags.String("bucket", "molluscdb", "Destination bucket")
	endpoint := cmd.Flags.String("url", "https://cog.sanger.ac.uk", "S3 endpoint URL")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *manifest == "" {
			return errors.New("upload: -config is required")
		}
		vars, err := upload.ParseVars(argv)
		if err != nil {
			return err
		}
		m, err := upload.LoadManifest(*manifest)
		if err != nil {
			return err
		}
		store, err := storage.New(*endpoint)
		if err != nil {
			return err
		}
		return upload.Run(store, m, *bucket, *dir, vars)
	})
	return cmd
}
