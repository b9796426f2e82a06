package main

/*
assembly-import reads the analysis results held for every assembly under an
S3 prefix and writes TSV + .types.yaml report pairs, driven by the
TEMPLATE_<name>.yaml files in the config directory.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/genomehubs/assembly-tools/importer"
	"github.com/genomehubs/assembly-tools/storage"
)

var (
	bucket    = flag.String("bucket", "molluscdb", "Bucket holding the assembly directories")
	prefix    = flag.String("prefix", "latest", "Key prefix under which one directory per assembly lives")
	endpoint  = flag.String("url", "https://cog.sanger.ac.uk", "S3 endpoint URL")
	configDir = flag.String("config", "", "Directory holding the TEMPLATE_<name>.yaml files")
	outDir    = flag.String("out", "", "Directory to write report pairs to (default current directory)")
)

func assemblyImportUsage() {
	fmt.Printf("Usage: %s [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = assemblyImportUsage
	shutdown := grail.Init()
	defer shutdown()

	store, err := storage.New(*endpoint)
	if err != nil {
		log.Fatalf("connecting to %s: %v", *endpoint, err)
	}
	im := importer.New(store, importer.Config{
		Bucket:    *bucket,
		Prefix:    *prefix,
		ConfigDir: *configDir,
		OutDir:    *outDir,
	})
	if err := im.Run(); err != nil {
		log.Fatalf("import: %v", err)
	}
}
