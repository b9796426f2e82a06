package main

/*
assembly-s3 bundles bucket maintenance commands: renaming an assembly
accession in place, probing which analysis files exist per assembly, and
uploading local files described by a YAML manifest.
*/

import (
	"log"

	"v.io/x/lib/cmdline"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "assembly-s3",
			Short:    "Maintenance commands for assembly analysis buckets",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdRename(),
				newCmdInventory(),
				newCmdUpload(),
			},
		})
}
