package sorter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mpegsort/internal/logging"
	"mpegsort/internal/relocate"
	"mpegsort/internal/services"
	"mpegsort/internal/signature"
)

// Progress is delivered to an Observer after each completed file.
type Progress struct {
	Done    int
	Total   int
	Outcome relocate.Outcome
}

// Observer receives progress notifications. Calls come from a single
// goroutine in completion order.
type Observer interface {
	Observe(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Progress)

// Observe calls f(p).
func (f ObserverFunc) Observe(p Progress) { f(p) }

// Recorder persists run history. Failures are logged and never abort a run.
type Recorder interface {
	BeginRun(ctx context.Context, runID, source string, mode Mode, workers int) error
	RecordOutcome(ctx context.Context, runID string, outcome relocate.Outcome) error
	FinishRun(ctx context.Context, runID string, summary Summary) error
}

// Detector classifies a file by its content. *signature.Detector is the
// production implementation.
type Detector interface {
	Detect(ctx context.Context, path string) signature.Classification
}

// Option customizes a Sorter.
type Option func(*Sorter)

// WithObserver attaches a progress observer.
func WithObserver(o Observer) Option {
	return func(s *Sorter) { s.observer = o }
}

// WithRecorder attaches a run history recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Sorter) { s.recorder = r }
}

// WithDetector overrides the signature detector.
func WithDetector(d Detector) Option {
	return func(s *Sorter) { s.detector = d }
}

// WithClock overrides the time source used for elapsed measurements.
func WithClock(now func() time.Time) Option {
	return func(s *Sorter) { s.now = now }
}

// Sorter runs sort requests.
type Sorter struct {
	base     *slog.Logger
	logger   *slog.Logger
	detector Detector
	observer Observer
	recorder Recorder
	now      func() time.Time
}

// New constructs a Sorter.
func New(logger *slog.Logger, opts ...Option) *Sorter {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Sorter{
		base:   logger,
		logger: logging.NewComponentLogger(logger, "sorter"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector = signature.NewDetector(logger)
	}
	return s
}

// Run performs one pass over req.SourceDir. Configuration problems are
// returned before anything on disk changes. Per-file failures never abort the
// batch; they are counted in the Summary. When ctx is cancelled, dispatch
// stops, in-flight files finish, and the partial Summary is returned along
// with ctx's error.
func (s *Sorter) Run(ctx context.Context, req Request) (Summary, error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}
	root, err := req.absSource()
	if err != nil {
		return Summary{}, err
	}
	layout := relocate.NewLayout(root)

	if !req.DryRun {
		release, err := acquireLock(root)
		if err != nil {
			return Summary{}, err
		}
		defer func() {
			if err := release(); err != nil {
				s.logger.Warn("failed to release source lock",
					logging.String(logging.FieldEventType, "lock_release_failed"),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove "+LockFileName+" if no other run is active"),
				)
			}
		}()
		if err := prepareLayout(layout, req.CreateUnknown); err != nil {
			return Summary{}, err
		}
	}

	paths, err := candidates(layout)
	if err != nil {
		return Summary{}, err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	workers := req.Workers()
	logger := logging.WithContext(ctx, s.logger)

	summary := Summary{
		RunID:     runID,
		Source:    root,
		Mode:      req.Mode,
		Workers:   workers,
		DryRun:    req.DryRun,
		StartedAt: s.now(),
	}
	summary.TotalFiles = len(paths)

	logger.Info("sort started",
		logging.String(logging.FieldEventType, "sort_started"),
		logging.String("source", root),
		logging.String("mode", req.Mode.String()),
		logging.Int("workers", workers),
		logging.Int("total_files", len(paths)),
		logging.Bool("dry_run", req.DryRun),
	)
	s.beginRecord(ctx, logger, summary)

	relocator := relocate.New(layout, relocate.Options{CreateUnknown: req.CreateUnknown, DryRun: req.DryRun}, s.base)
	outcomes := make(chan relocate.Outcome, workers)
	folded := make(chan Counts, 1)

	go func() {
		counts := summary.Counts
		for outcome := range outcomes {
			counts.add(layout, outcome)
			s.record(ctx, logger, runID, outcome)
			if s.observer != nil {
				s.observer.Observe(Progress{Done: counts.Processed, Total: counts.TotalFiles, Outcome: outcome})
			}
		}
		folded <- counts
	}()

	workCtx := services.WithStage(ctx, "relocate")
	dispatcherFor(req.Mode, workers).dispatch(workCtx, paths, func(ctx context.Context, path string) {
		outcomes <- relocator.Relocate(ctx, path, s.detector.Detect(ctx, path))
	})
	close(outcomes)
	summary.Counts = <-folded
	summary.finish(s.now().Sub(summary.StartedAt))

	runErr := ctx.Err()
	summary.Cancelled = runErr != nil && summary.Processed < summary.TotalFiles
	if !summary.Cancelled {
		runErr = nil
	}
	s.finishRecord(ctx, logger, summary)

	logger.Info("sort completed",
		logging.String(logging.FieldEventType, "sort_completed"),
		logging.Int("processed", summary.Processed),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors),
		logging.Int("audio", summary.AudioCount),
		logging.Int("video", summary.VideoCount),
		logging.Int("unknown", summary.UnknownCount),
		logging.Int("extensions_corrected", summary.ExtensionsCorrected),
		logging.Float64("elapsed_seconds", summary.ElapsedSeconds),
		logging.Bool("cancelled", summary.Cancelled),
	)
	return summary, runErr
}

func (s *Sorter) beginRecord(ctx context.Context, logger *slog.Logger, summary Summary) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.BeginRun(context.WithoutCancel(ctx), summary.RunID, summary.Source, summary.Mode, summary.Workers); err != nil {
		logging.WarnWithContext(logger, "failed to record run start", "journal_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}

func (s *Sorter) record(ctx context.Context, logger *slog.Logger, runID string, outcome relocate.Outcome) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordOutcome(context.WithoutCancel(ctx), runID, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record outcome", "journal_record_failed",
			logging.String(logging.FieldFile, outcome.OriginalName),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}

func (s *Sorter) finishRecord(ctx context.Context, logger *slog.Logger, summary Summary) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary); err != nil {
		logging.WarnWithContext(logger, "failed to record run summary", "journal_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history will be incomplete"),
		)
	}
}
