package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"mpegsort/internal/journal"
	"mpegsort/internal/relocate"
	"mpegsort/internal/textutil"
)

type runDetail struct {
	Run      journal.Run        `json:"run"`
	Outcomes []relocate.Outcome `json:"outcomes"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		runID   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sort runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				if errors.Is(err, errJournalDisabled) {
					return fmt.Errorf("%w; enable [journal] to keep run history", err)
				}
				return err
			}
			defer store.Close()

			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				outcomes, err := store.Outcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, runDetail{Run: run, Outcomes: outcomes})
				}
				printRunDetail(cmd, run, outcomes)
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []journal.Run{}
				}
				return writeJSON(cmd, runs)
			}
			printRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-file outcomes of one run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of tables")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []journal.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			formatTime(r.StartedAt),
			r.Source,
			r.Mode.String(),
			string(r.Status),
			yesNo(r.DryRun),
			strconv.Itoa(r.Counts.TotalFiles),
			strconv.Itoa(r.Counts.Succeeded),
			strconv.Itoa(r.Counts.Skipped),
			strconv.Itoa(r.Counts.Errors),
		})
	}
	headers := []string{"Run", "Started", "Source", "Mode", "Status", "Dry run", "Files", "Moved", "Skipped", "Errors"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func printRunDetail(cmd *cobra.Command, run journal.Run, outcomes []relocate.Outcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusOK
	switch {
	case run.Status == journal.RunCancelled:
		kind = statusWarn
	case run.Status == journal.RunRunning:
		kind = statusInfo
	case run.Counts.Errors > 0:
		kind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Run", kind, fmt.Sprintf("%s (%s)", run.ID, run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.Source, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatTime(run.StartedAt), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, formatSeconds(run.Elapsed), colorize))

	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No outcomes recorded")
		return
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		dest := "-"
		if o.DestinationPath() != "" {
			dest = filepath.Join(filepath.Base(o.DestinationDir), o.FinalName)
		}
		rows = append(rows, []string{o.OriginalName, o.Operation.String(), dest, textutil.Truncate(o.ErrorDetail, 60)})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Operation", "Destination", "Detail"}, rows, nil))
}
