package main

import (
	"fmt"
	"os"

	"github.com/claude/liftlog/internal/cli"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := cli.NewRootCommand(Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "liftlog:", err)
		os.Exit(1)
	}
}
