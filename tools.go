//go:build tools

package tools

// cobra/doc is only imported by cmd/gendoc, which is excluded from normal builds.
import (
	_ "github.com/spf13/cobra/doc"
)
