package main

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version and available drivers",
		Action: func(c *cli.Context) error {
			w := c.App.Writer
			fmt.Fprintln(w, figure.NewFigure("hsactl", "", true).String())
			fmt.Fprintf(w, "version %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintln(w, "drivers: software")
			if gpu.HSAUnavailableReason == "" {
				fmt.Fprintln(w, "         hsa")
			} else {
				fmt.Fprintf(w, "         hsa unavailable: %s\n", gpu.HSAUnavailableReason)
			}
			return nil
		},
	}
}
