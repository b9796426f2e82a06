package main

import (
	"github.com/grailbio/base/cmdutil"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"

	"github.com/genomehubs/assembly-tools/importer"
	"github.com/genomehubs/assembly-tools/storage"
)

func newCmdInventory() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "inventory",
		Short: "Report which analysis files exist for every assembly",
	}
	bucket := cmd.Flags.String("bucket", "molluscdb", "Bucket holding the assembly directories")
	prefix := cmd.Flags.String("prefix", "latest", "Key prefix under which one directory per assembly lives")
	endpoint := cmd.Flags.String("url", "https://cog.sanger.ac.uk", "S3 endpoint URL")
	template := cmd.Flags.String("config", "", "Template file naming the analysis files to probe")
	attribute := cmd.Flags.String("attribute", "files", "Attribute name prefixing the per-analysis columns")
	outDir := cmd.Flags.String("out", "", "Directory to write the inventory to (default current directory)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return errors.Errorf("inventory takes no positional arguments, but got %v", argv)
		}
		if *template == "" {
			return errors.New("inventory: -config is required")
		}
		store, err := storage.New(*endpoint)
		if err != nil {
			return err
		}
		im := importer.New(store, importer.Config{
			Bucket: *bucket,
			Prefix: *prefix,
			OutDir: *outDir,
		})
		return im.Inventory(*template, *attribute)
	})
	return cmd
}
