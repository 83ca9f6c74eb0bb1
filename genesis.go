package main

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

func cleanPathAction(name string) func(context.Context, *cli.Command, string) error {
	return func(_ context.Context, command *cli.Command, s string) error {
		if isS3Location(s) {
			return nil
		}
		return command.Set(name, filepath.Clean(s))
	}
}

var genesisCmd = cli.Command{
	Name:  "genesis",
	Usage: "Manage THORNode genesis JSON file",
	Commands: []*cli.Command{
		{
			Name:  "merge",
			Usage: "Merge a diff of accounts, balances, mimirs, vaults, pools and wasm state into the genesis JSON file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "genesis",
					Usage:       "Path or s3:// URI of the genesis file.",
					DefaultText: "$HOME/.thornode/config/genesis.json",
					Destination: &destinations.merge.genesis,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
					Action:      cleanPathAction("genesis"),
				},
				&cli.StringFlag{
					Name:        "diff",
					Usage:       "Path or s3:// URI of the diff document. JSON, or YAML/TOML by extension.",
					DefaultText: defaultDiffPath,
					Sources:     cli.EnvVars("FORKCTL_DIFF"),
					Destination: &destinations.merge.diff,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
					Action:      cleanPathAction("diff"),
				},
				&cli.StringFlag{
					Name:        "membership",
					Usage:       "Path or s3:// URI of the JSON array used as membership of newly added vaults.",
					DefaultText: defaultMembershipPath,
					Destination: &destinations.merge.membership,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
					Action:      cleanPathAction("membership"),
				},
				&cli.StringFlag{
					Name:        "mode",
					Usage:       "Output mode: 'json' rewrites the genesis file, 'sed' writes one substitution per changed module.",
					DefaultText: modeJSON,
					Destination: &destinations.merge.mode,
					Config:      cli.StringConfig{TrimSpace: true},
					Validator:   validateMode,
				},
				&cli.StringFlag{
					Name:        "output",
					Aliases:     []string{"o"},
					Usage:       "Where to write the result instead of the genesis file (json) or " + defaultSedPath + " (sed).",
					Destination: &destinations.merge.output,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
					Action:      cleanPathAction("output"),
				},
				&cli.StringFlag{
					Name:        "report",
					Usage:       "Write the JSON Patch operations applied to each changed module to this file.",
					Destination: &destinations.merge.report,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
				},
				&cli.StringFlag{
					Name:        "metrics-textfile",
					Usage:       "Write merge metrics in the node exporter textfile format to this file.",
					Destination: &destinations.merge.metricsTextfile,
					TakesFile:   true,
					Config:      cli.StringConfig{TrimSpace: true},
				},
				&cli.BoolFlag{
					Name:        "dry-run",
					Usage:       "Run the merge and report the outcome without writing anything.",
					Destination: &destinations.merge.dryRun,
				},
			},
			Action: func(ctx context.Context, command *cli.Command) error {
				settings, err := resolveMergeSettings(command)
				if err != nil {
					return err
				}
				logger, err := newLogger(destinations.debug)
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()

				return runMerge(ctx, settings, newDocumentReader(), logger, command.Root().Writer)
			},
		},
	},
}
