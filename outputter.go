package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thorfork/forkctl/internal/genesis"
)

// writeGenesis persists the merged document according to settings and
// returns the status suffix describing what was written.
func writeGenesis(settings mergeSettings, original []byte, doc genesis.Document, report genesis.Report) (string, error) {
	switch settings.Mode {
	case modeSed:
		lines, err := genesis.Substitutions(original, doc, report.Changes)
		if err != nil {
			return "", fmt.Errorf("rendering substitutions: %w", err)
		}
		destination := settings.Output
		if destination == "" {
			destination = defaultSedPath
		}
		content := strings.Join(lines, "\n") + "\n"
		if err := writeFileAtomically(destination, []byte(content), 0600); err != nil {
			return "", fmt.Errorf("writing substitutions: %w", err)
		}
		return "applied_sed=1", nil
	default:
		encoded, err := genesis.Encode(doc)
		if err != nil {
			return "", fmt.Errorf("marshalling patched genesis: %w", err)
		}
		if settings.Output != "" {
			if err := writeFileAtomically(settings.Output, encoded, 0600); err != nil {
				return "", fmt.Errorf("writing patched genesis: %w", err)
			}
			return "applied_json=1", nil
		}
		if isS3Location(settings.Genesis) {
			return "", fmt.Errorf("cannot rewrite %s in place, set an output path", settings.Genesis)
		}
		stat, err := os.Stat(settings.Genesis)
		if err != nil {
			return "", fmt.Errorf("failed to get genesis file stat %s: %w", settings.Genesis, err)
		}
		if err := writeFileAtomically(settings.Genesis, encoded, stat.Mode().Perm()); err != nil {
			return "", fmt.Errorf("writing patched genesis: %w", err)
		}
		return "applied_json=1", nil
	}
}

func writeChangeReport(path string, original []byte, doc genesis.Document, report genesis.Report) error {
	changes, err := genesis.ChangeReport(original, doc, report.Changes)
	if err != nil {
		return err
	}
	content, err := json.MarshalIndent(changes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling change report: %w", err)
	}
	return writeFileAtomically(path, append(content, '\n'), 0600)
}

// writeFileAtomically atomically writes the content at the given path by writing it in
// a temporary file first, then renaming it to the destination.
func writeFileAtomically(destination string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(destination)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}

	// TODO: Make this windows friendly
	//
	// On windows rename fails if file already exists; live with it for now since
	// this utility is not used on windows.
	if err := os.Rename(tmpName, destination); err != nil {
		return err
	}
	tmpFile = nil
	return nil
}
