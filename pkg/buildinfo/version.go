// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/peerscan/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/peerscan/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/peerscan/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Name is the binary name used in reports and the User-Agent header.
const Name = "peerscan"

// Tool returns "peerscan/<version>", the identifier written into scan
// reports.
func Tool() string { return Name + "/" + Version }

// UserAgent returns the User-Agent sent to package registries.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
