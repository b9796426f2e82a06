package main

/*
busco-overlap compares two BUSCO full tables and reports, for every gene in
the first table, how much of it is covered by genes in the second.  Results
are written as a TSV ranked by overlap length and, optionally, as a PNG
summary plot.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/genomehubs/assembly-tools/overlap"
)

var plotPath = flag.String("plot", "", "Write a PNG overlap plot to this path")

func buscoOverlapUsage() {
	fmt.Printf("Usage: %s [OPTIONS] table1 table2 out.tsv\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = buscoOverlapUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 3 {
		log.Fatalf("Expected three positional arguments (table1 table2 out.tsv), got %v", flag.Args())
	}
	args := flag.Args()
	query, err := overlap.ReadSetFromPath(args[0])
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
	ref, err := overlap.ReadSetFromPath(args[1])
	if err != nil {
		log.Fatalf("%s: %v", args[1], err)
	}
	results := overlap.Find(query, ref)
	if *plotPath != "" {
		if err := overlap.RenderPNG(results, *plotPath); err != nil {
			log.Fatalf("%s: %v", *plotPath, err)
		}
	}
	if err := overlap.WriteTSVToPath(args[2], results); err != nil {
		log.Fatalf("%s: %v", args[2], err)
	}
}
