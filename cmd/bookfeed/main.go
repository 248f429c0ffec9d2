// Command bookfeed feeds long documents into a chat conversation one
// bounded chunk at a time.
package main

import (
	"os"

	"github.com/custodia-labs/bookfeed/internal/adapters/driving/cli"
)

// version is set at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
