package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "hsactl",
		Usage:    "Inspect agents and dispatch kernels through the HSA runtime",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   config.DefaultConfigPath,
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"HSACTL_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Override the configured runtime driver (software or hsa)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if driver := c.String("driver"); driver != "" {
				cfg.Runtime.Driver = driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			zapLogger, err := logger.New(cfg.Logger.Verbosity)
			if err != nil {
				return err
			}
			c.App.Metadata["config"] = cfg
			c.App.Metadata["logger"] = zapLogger.Named("cli")
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			agentsCommand(),
			runCommand(),
			stressCommand(),
			versionCommand(),
		},
	}
}

// loadConfig reads path, falling back to the defaults when the file does not
// exist so the tool works before `hsactl init`.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func loggerFrom(c *cli.Context) *zap.Logger {
	return c.App.Metadata["logger"].(*zap.Logger)
}
