package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/thorfork/forkctl/internal/genesis"
)

// Status lines printed by runMerge, one per terminal outcome.
const (
	statusDiffAbsent = "diff_absent"
	statusDiffEmpty  = "diff_empty"
	statusNoChanges  = "mods_changed=0"
)

// runMerge applies the diff at settings.Diff to the genesis document and
// prints a single status line to out. A missing or empty diff is a no-op.
func runMerge(ctx context.Context, settings mergeSettings, reader *documentReader, logger *zap.Logger, out io.Writer) error {
	logger = logger.With(zap.String("genesis", settings.Genesis), zap.String("diff", settings.Diff))

	diffBytes, err := reader.Read(ctx, settings.Diff)
	if errors.Is(err, errDocumentAbsent) {
		logger.Info("No diff to merge")
		_, err = fmt.Fprintln(out, statusDiffAbsent)
		return err
	}
	if err != nil {
		return fmt.Errorf("reading diff: %w", err)
	}
	diffBytes = bytes.TrimSpace(diffBytes)
	if len(diffBytes) == 0 || string(diffBytes) == "{}" {
		logger.Info("Diff is empty")
		_, err = fmt.Fprintln(out, statusDiffEmpty)
		return err
	}
	diff, err := decodeDiff(settings.Diff, diffBytes)
	if err != nil {
		return err
	}
	if len(diff) == 0 {
		logger.Info("Diff is empty")
		_, err = fmt.Fprintln(out, statusDiffEmpty)
		return err
	}

	original, err := reader.Read(ctx, settings.Genesis)
	if err != nil {
		return fmt.Errorf("reading genesis file: %w", err)
	}
	doc, err := genesis.Decode(original)
	if err != nil {
		return fmt.Errorf("parsing genesis: %w", err)
	}

	membership := genesis.OnceMembership(func() []any {
		return loadMembership(ctx, reader, settings.Membership, logger)
	})
	report, err := genesis.NewPatcher(membership, genesis.WithLogger(logger)).Apply(doc, diff)
	if err != nil {
		return fmt.Errorf("merging diff: %w", err)
	}
	if report.Changes.Empty() {
		logger.Info("Diff changed nothing")
		_, err = fmt.Fprintln(out, statusNoChanges)
		return err
	}
	logger.Info("Merged diff", zap.Stringer("modules", report.Changes))

	if settings.MetricsTextfile != "" {
		if err := writeMetrics(settings.MetricsTextfile, report); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if settings.DryRun {
		_, err = fmt.Fprintf(out, "mods_changed=%d dry_run=1\n", report.Changes.Len())
		return err
	}
	if settings.Report != "" {
		if err := writeChangeReport(settings.Report, original, doc, report); err != nil {
			return fmt.Errorf("writing change report: %w", err)
		}
	}
	applied, err := writeGenesis(settings, original, doc, report)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "mods_changed=%d %s\n", report.Changes.Len(), applied)
	return err
}

// loadMembership reads the membership document for new vaults. Any failure
// falls back to an empty membership.
func loadMembership(ctx context.Context, reader *documentReader, location string, logger *zap.Logger) []any {
	content, err := reader.Read(ctx, location)
	if err != nil {
		logger.Warn("Vault membership unavailable, new vaults get no members", zap.String("membership", location), zap.Error(err))
		return []any{}
	}
	members, err := genesis.DecodeMembership(content)
	if err != nil {
		logger.Warn("Vault membership unreadable, new vaults get no members", zap.String("membership", location), zap.Error(err))
		return []any{}
	}
	logger.Debug("Loaded vault membership", zap.Int("members", len(members)))
	return members
}
