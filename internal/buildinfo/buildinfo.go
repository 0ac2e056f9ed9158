// Package buildinfo exposes version data injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/docvault/internal/buildinfo.BuildVersion=v1.2.0 \
//	  -X github.com/dmitrijs2005/docvault/internal/buildinfo.BuildDate=2026-01-01 \
//	  -X github.com/dmitrijs2005/docvault/internal/buildinfo.BuildCommit=abc123"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	BuildVersion = "N/A"
	BuildDate    = "N/A"
	BuildCommit  = "N/A"
)

// PrintBuildData writes the build version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", BuildVersion)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", BuildCommit)
}
