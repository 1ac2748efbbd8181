package main

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"mpegsort/internal/config"
	"mpegsort/internal/logging"
	"mpegsort/internal/progress"
	"mpegsort/internal/relocate"
	"mpegsort/internal/sorter"
	"mpegsort/internal/textutil"
)

type sortFlags struct {
	unknown    bool
	workers    int
	sequential bool
	dryRun     bool
	jsonOut    bool
	quiet      bool
}

type sortReport struct {
	Summary  sorter.Summary     `json:"summary"`
	Failures []relocate.Outcome `json:"failures,omitempty"`
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort <dir>",
		Short: "Move audio and video files into audio/ and video/ by content",
		Long: "Classify every regular file directly inside <dir> by its leading bytes, " +
			"correct .mp3/.mp4 extensions that disagree with the content, and move the " +
			"file into <dir>/audio or <dir>/video. Existing files are never overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, ctx, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.unknown, "unknown", false, "Move unrecognised files into unknown/")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Maximum parallel workers (0 = CPU count)")
	cmd.Flags().BoolVar(&flags.sequential, "sequential", false, "Process files one at a time")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan moves without touching any file")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress progress lines")
	return cmd
}

// buildRequest layers explicitly set flags over the [sort] config defaults.
func buildRequest(cmd *cobra.Command, cfg *config.Config, dir string, flags sortFlags) sorter.Request {
	req := sorter.Request{
		SourceDir:     dir,
		CreateUnknown: cfg.Sort.CreateUnknown,
		MaxWorkers:    cfg.Sort.Workers,
		DryRun:        flags.dryRun,
	}
	sequential := cfg.Sort.Sequential
	if cmd.Flags().Changed("unknown") {
		req.CreateUnknown = flags.unknown
	}
	if cmd.Flags().Changed("workers") {
		req.MaxWorkers = flags.workers
	}
	if cmd.Flags().Changed("sequential") {
		sequential = flags.sequential
	}
	req.Mode = textutil.Ternary(sequential, sorter.ModeSequential, sorter.ModeParallel)
	return req
}

func runSort(cmd *cobra.Command, ctx *commandContext, dir string, flags sortFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return err
	}

	req := buildRequest(cmd, cfg, dir, flags)

	var (
		mu       sync.Mutex
		failures []relocate.Outcome
		reporter *progress.Reporter
	)
	if !flags.quiet {
		reporter = progress.NewReporter(cmd.ErrOrStderr(), cfg.Sort.ProgressInterval)
	}
	observer := sorter.ObserverFunc(func(p sorter.Progress) {
		if p.Outcome.Operation == relocate.OpError {
			mu.Lock()
			failures = append(failures, p.Outcome)
			mu.Unlock()
		}
		reporter.Observe(p)
	})
	opts := []sorter.Option{sorter.WithObserver(observer)}

	if cfg.Journal.Enabled {
		store, err := ctx.openJournal()
		if err != nil {
			logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path in the configuration"),
				logging.String(logging.FieldImpact, "this run will not appear in history"),
			)
		} else {
			defer store.Close()
			opts = append(opts, sorter.WithRecorder(store))
		}
	}

	summary, runErr := sorter.New(logger, opts...).Run(cmd.Context(), req)
	if runErr != nil && summary.RunID == "" {
		return runErr
	}

	report := sortReport{Summary: summary, Failures: failures}
	if flags.jsonOut {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
		return runErr
	}
	printSortReport(cmd, report)
	return runErr
}

func printSortReport(cmd *cobra.Command, report sortReport) {
	out := cmd.OutOrStdout()
	s := report.Summary

	rows := [][]string{
		{"Source", s.Source},
		{"Mode", fmt.Sprintf("%s (%d workers)", s.Mode, s.Workers)},
		{"Dry run", yesNo(s.DryRun)},
		{"Files found", strconv.Itoa(s.TotalFiles)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Audio", strconv.Itoa(s.AudioCount)},
		{"Video", strconv.Itoa(s.VideoCount)},
		{"Unknown", strconv.Itoa(s.UnknownCount)},
		{"Extensions corrected", strconv.Itoa(s.ExtensionsCorrected)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Errors", strconv.Itoa(s.Errors)},
		{"Elapsed", formatSeconds(s.ElapsedSeconds)},
		{"Throughput", formatRate(s.FilesPerSecond)},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(report.Failures) > 0 {
		failureRows := make([][]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			failureRows = append(failureRows, []string{f.OriginalName, textutil.Truncate(f.ErrorDetail, 80)})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Error"}, failureRows, nil))
	}

	colorize := shouldColorize(out)
	switch {
	case s.Cancelled:
		fmt.Fprintln(out, renderStatusLine("Sort", statusWarn, fmt.Sprintf("cancelled after %d of %d files", s.Processed, s.TotalFiles), colorize))
	case s.Errors > 0:
		fmt.Fprintln(out, renderStatusLine("Sort", statusError, fmt.Sprintf("%d of %d files failed", s.Errors, s.Processed), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Sort", statusOK, fmt.Sprintf("%d files processed", s.Processed), colorize))
	}
	if s.RunID != "" {
		fmt.Fprintln(out, renderStatusLine("Run", statusInfo, s.RunID, colorize))
	}
}
