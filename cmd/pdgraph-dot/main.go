package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsariola/pdgraph"
	"github.com/vsariola/pdgraph/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	abstraction := flag.String("a", "", "Draw the named abstraction of the document instead of its main patch.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() != 1 || *help {
		flag.Usage()
		os.Exit(0)
	}
	filename := flag.Arg(0)
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read file %v: %v\n", filename, err)
		os.Exit(1)
	}
	doc, err := pdgraph.LoadDocument(inputBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", filename, err)
		os.Exit(1)
	}
	patch, name := doc.Patch, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if *abstraction != "" {
		var ok bool
		if patch, ok = doc.Abstractions[*abstraction]; !ok {
			fmt.Fprintf(os.Stderr, "%v: no abstraction named %v\n", filename, *abstraction)
			os.Exit(1)
		}
		name = *abstraction
	}
	dot, err := patch.Dot(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not draw %v: %v\n", filename, err)
		os.Exit(1)
	}
	fmt.Print(dot)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "pdgraph-dot prints a Graphviz rendering of a .yml/.json patch document.\nUsage: %s [flags] file\n", os.Args[0])
	flag.PrintDefaults()
}
