//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/commitmate/commitmate/cmd"
	"github.com/spf13/cobra/doc"
)

func main() {
	dir := "./docs/man"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	header := &doc.GenManHeader{
		Title:   "COMMITMATE",
		Section: "1",
		Source:  "commitmate " + cmd.Version,
		Manual:  "commitmate Manual",
	}

	root := cmd.RootCmd()
	root.DisableAutoGenTag = true
	if err := doc.GenManTree(root, header, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man pages: %v\n", err)
		os.Exit(1)
	}
	if err := doc.GenMarkdownTree(root, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating markdown docs: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Docs generated in %s\n", dir)
}
