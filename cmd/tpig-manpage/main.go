package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/templatepig/cmd/tpig"
	"github.com/arthur-debert/templatepig/internal/version"
)

func main() {
	header := &doc.GenManHeader{
		Title:   "TPIG",
		Section: "1",
		Source:  "tpig " + version.Version,
		Manual:  "Template Pig manual",
	}
	if err := doc.GenMan(tpig.NewRootCmd(), header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
