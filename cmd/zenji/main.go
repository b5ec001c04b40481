// Command zenji indexes flower essence documents and runs grounded Q&A and intake conversations.
package main

import (
	"os"

	"github.com/custodia-labs/zenji/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
