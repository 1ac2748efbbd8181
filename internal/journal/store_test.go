package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mpegsort/internal/journal"
	"mpegsort/internal/logging"
	"mpegsort/internal/relocate"
	"mpegsort/internal/sorter"
	"mpegsort/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "001_initial" {
		t.Fatalf("expected 001_initial, got %q", version)
	}
	if store.Path() != cfg.Journal.Path {
		t.Fatalf("unexpected path %q", store.Path())
	}
}

func TestOpenIsRepeatable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	if err := first.BeginRun(ctx, "run-1", "/inbox", sorter.ModeParallel, 4); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if _, err := second.GetRun(ctx, "run-1"); err != nil {
		t.Fatalf("run lost across reopen: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := journal.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRunLifecycle(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", "/inbox", sorter.ModeSequential, 1); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunRunning || run.Mode != sorter.ModeSequential || run.Workers != 1 {
		t.Fatalf("unexpected running record: %+v", run)
	}
	if !run.FinishedAt.IsZero() {
		t.Fatalf("running run should not have finished_at: %v", run.FinishedAt)
	}

	outcomes := []relocate.Outcome{
		{OriginalName: "clip.mp3", SourcePath: "/inbox/clip.mp3", Success: true, Operation: relocate.OpMovedAndRenamed, DestinationDir: "/inbox/video", FinalName: "clip.mp4"},
		{OriginalName: "blob.bin", SourcePath: "/inbox/blob.bin", Success: true, Operation: relocate.OpSkippedUnknownType},
		{OriginalName: "x.mp3", SourcePath: "/inbox/x.mp3", Operation: relocate.OpError, ErrorDetail: "permission denied"},
	}
	for _, o := range outcomes {
		if err := store.RecordOutcome(ctx, "run-1", o); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	summary := sorter.Summary{
		RunID: "run-1",
		Counts: sorter.Counts{
			TotalFiles: 3, Processed: 3, Succeeded: 1, Skipped: 1, Errors: 1,
			VideoCount: 1, ExtensionsCorrected: 1,
		},
		ElapsedSeconds: 0.5,
		FilesPerSecond: 6,
	}
	if err := store.FinishRun(ctx, "run-1", summary); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunCompleted || run.Counts != summary.Counts || run.Throughput != 6 {
		t.Fatalf("unexpected finished record: %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("expected finished_at")
	}

	got, err := store.Outcomes(ctx, "run-1")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(got) != len(outcomes) {
		t.Fatalf("expected %d outcomes, got %d", len(outcomes), len(got))
	}
	for i := range outcomes {
		if got[i] != outcomes[i] {
			t.Fatalf("outcome %d mismatch:\n got %+v\nwant %+v", i, got[i], outcomes[i])
		}
	}
}

func TestFinishRunMarksCancelled(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if err := store.BeginRun(ctx, "run-c", "/inbox", sorter.ModeParallel, 2); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.FinishRun(ctx, "run-c", sorter.Summary{Cancelled: true, DryRun: true}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err := store.GetRun(ctx, "run-c")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunCancelled || !run.DryRun {
		t.Fatalf("unexpected record: %+v", run)
	}
}

func TestUnknownRunErrors(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := store.FinishRun(ctx, "missing", sorter.Summary{}); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := store.RecordOutcome(ctx, "missing", relocate.Outcome{OriginalName: "a"}); err == nil {
		t.Fatal("expected foreign key error for unknown run")
	}
	if err := store.BeginRun(ctx, "", "/inbox", sorter.ModeParallel, 1); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.BeginRun(ctx, id, "/inbox", sorter.ModeParallel, 2); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestStoreRecordsSorterRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	root := filepath.Join(testsupport.BaseDir(cfg), "inbox")
	testsupport.WriteFixtureSet(t, root)

	s := sorter.New(logging.NewNop(), sorter.WithRecorder(store))
	summary, err := s.Run(context.Background(), sorter.Request{SourceDir: root, CreateUnknown: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Counts != summary.Counts || run.Status != journal.RunCompleted {
		t.Fatalf("journal disagrees with summary:\n run %+v\n sum %+v", run, summary)
	}
	outcomes, err := store.Outcomes(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(outcomes) != summary.Processed {
		t.Fatalf("expected %d outcomes, got %d", summary.Processed, len(outcomes))
	}
}
