package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/fiction-occupations/enricher/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	// fang cancels the command context on interrupt; the pipeline stops at the
	// next record boundary.
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
