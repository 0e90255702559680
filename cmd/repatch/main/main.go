package main

import (
	"os"

	"github.com/arthur-debert/repatch/cmd/repatch"
	"github.com/arthur-debert/repatch/pkg/report"
)

func main() {
	rootCmd := repatch.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		_ = report.New(os.Stderr, report.FormatAuto).RenderError(err)
		os.Exit(repatch.ExitCode(err))
	}
}
