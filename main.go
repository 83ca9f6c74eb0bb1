package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	destinations = struct {
		home   string
		config string
		debug  bool
		merge  struct {
			genesis         string
			diff            string
			membership      string
			mode            string
			output          string
			report          string
			metricsTextfile string
			dryRun          bool
		}
	}{}

	forkctlCmd = cli.Command{
		Name:  "forkctl",
		Usage: "Prepare THORNode state for a forked network launch",
		Commands: []*cli.Command{
			&genesisCmd,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "home",
				Usage:       "The THORNode home directory.",
				DefaultText: "$HOME/.thornode",
				Sources:     cli.EnvVars("THORNODE_HOME"),
				Destination: &destinations.home,
				TakesFile:   true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					return command.Set("home", filepath.Clean(s))
				},
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the forkctl TOML configuration file.",
				DefaultText: "$HOME/.thornode/config/forkctl.toml",
				Sources:     cli.EnvVars("FORKCTL_CONFIG"),
				Destination: &destinations.config,
				TakesFile:   true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Enable debug logging.",
				Sources:     cli.EnvVars("FORKCTL_DEBUG"),
				Destination: &destinations.debug,
			},
		},
	}
)

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func main() {
	if err := forkctlCmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
