package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

const (
	modeJSON = "json"
	modeSed  = "sed"

	defaultDiffPath       = "/tmp/diff.json"
	defaultMembershipPath = "/tmp/vault_membership.json"
	defaultSedPath        = "/tmp/genesis_patch.sed"
)

// mergeSettings is the resolved configuration of a genesis merge run.
type mergeSettings struct {
	Genesis         string `toml:"genesis"`
	Diff            string `toml:"diff"`
	Membership      string `toml:"membership"`
	Mode            string `toml:"mode"`
	Output          string `toml:"output"`
	Report          string `toml:"report"`
	MetricsTextfile string `toml:"metrics-textfile"`
	DryRun          bool   `toml:"dry-run"`
}

// launcherConfig mirrors the forkctl.toml layout.
type launcherConfig struct {
	Merge mergeSettings `toml:"merge"`
}

func resolveHome() (string, error) {
	if destinations.home != "" {
		return destinations.home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Clean(filepath.Join(userHome, ".thornode")), nil
}

func defaultMergeSettings(home string) mergeSettings {
	return mergeSettings{
		Genesis:    filepath.Join(home, "config", "genesis.json"),
		Diff:       defaultDiffPath,
		Membership: defaultMembershipPath,
		Mode:       modeJSON,
	}
}

// loadLauncherConfig decodes path over settings. A missing file is only an
// error when required is set.
func loadLauncherConfig(path string, required bool, settings mergeSettings) (mergeSettings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return settings, nil
		}
		return settings, fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	config := launcherConfig{Merge: settings}
	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return settings, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config.Merge, nil
}

// resolveMergeSettings layers defaults, the TOML config and explicitly set
// flags, in increasing precedence.
func resolveMergeSettings(command *cli.Command) (mergeSettings, error) {
	home, err := resolveHome()
	if err != nil {
		return mergeSettings{}, err
	}
	settings := defaultMergeSettings(home)

	configPath, required := destinations.config, true
	if configPath == "" {
		configPath, required = filepath.Join(home, "config", "forkctl.toml"), false
	}
	if settings, err = loadLauncherConfig(configPath, required, settings); err != nil {
		return mergeSettings{}, err
	}

	overrides := []struct {
		flag  string
		value string
		field *string
	}{
		{"genesis", destinations.merge.genesis, &settings.Genesis},
		{"diff", destinations.merge.diff, &settings.Diff},
		{"membership", destinations.merge.membership, &settings.Membership},
		{"mode", destinations.merge.mode, &settings.Mode},
		{"output", destinations.merge.output, &settings.Output},
		{"report", destinations.merge.report, &settings.Report},
		{"metrics-textfile", destinations.merge.metricsTextfile, &settings.MetricsTextfile},
	}
	for _, o := range overrides {
		if command.IsSet(o.flag) {
			*o.field = o.value
		}
	}
	if command.IsSet("dry-run") {
		settings.DryRun = destinations.merge.dryRun
	}
	if err := validateMode(settings.Mode); err != nil {
		return mergeSettings{}, err
	}
	return settings, nil
}

func validateMode(mode string) error {
	switch mode {
	case modeJSON, modeSed:
		return nil
	default:
		return fmt.Errorf("invalid mode: %s, must be one of %s or %s", mode, modeJSON, modeSed)
	}
}
