package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/mhaussmann/textsort/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	root := cli.NewRootCmd(GitCommit)

	// fang handles --version, completions, manpages and signal-driven
	// context cancellation; an interrupt cancels the running session
	// cooperatively at the next image boundary.
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
