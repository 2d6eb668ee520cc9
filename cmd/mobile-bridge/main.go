package main

import (
	"os"

	"github.com/e0as/mobile-bridge/internal/cli"
)

// BuildVersion is set at build time via ldflags
var BuildVersion = "dev"

func main() {
	if err := cli.Execute(BuildVersion); err != nil {
		os.Exit(1)
	}
}
