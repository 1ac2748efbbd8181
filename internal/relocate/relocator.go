package relocate

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"mpegsort/internal/fileutil"
	"mpegsort/internal/logging"
	"mpegsort/internal/signature"
	"mpegsort/internal/textutil"
)

// MaxErrorDetail bounds the diagnostic string carried by an error outcome.
const MaxErrorDetail = 256

const (
	audioExtension = ".mp3"
	videoExtension = ".mp4"
)

// Options controls relocation behaviour.
type Options struct {
	CreateUnknown bool
	DryRun        bool
}

// Relocator moves files into the buckets of a Layout. It is safe for
// concurrent use; naming and renaming into one directory is serialized.
type Relocator struct {
	layout   Layout
	opts     Options
	locks    *fileutil.DirLocks
	reserved *fileutil.Reservations
	logger   *slog.Logger
}

// New constructs a Relocator for layout.
func New(layout Layout, opts Options, logger *slog.Logger) *Relocator {
	return &Relocator{
		layout:   layout,
		opts:     opts,
		locks:    fileutil.NewDirLocks(),
		reserved: fileutil.NewReservations(),
		logger:   logging.NewComponentLogger(logger, "relocate"),
	}
}

// Relocate moves path according to its classification and reports the result.
func (r *Relocator) Relocate(ctx context.Context, path string, c signature.Classification) Outcome {
	path = filepath.Clean(path)
	name := filepath.Base(path)
	out := Outcome{OriginalName: name, SourcePath: path, DryRun: r.opts.DryRun}
	logger := logging.WithContext(ctx, r.logger)

	if r.layout.Managed(filepath.Dir(path)) {
		out.Success = true
		out.Operation = OpSkippedAlreadySorted
		return out
	}

	destDir, canonical, ok := r.destination(c.Kind)
	if !ok {
		out.Success = true
		out.Operation = OpSkippedUnknownType
		logger.Info("skipping file of unknown type", logging.String(logging.FieldFile, name))
		return out
	}

	desired, op := correctedName(name, canonical)

	final, err := r.place(path, destDir, desired)
	if err != nil {
		out.Operation = OpError
		out.ErrorDetail = textutil.Truncate(err.Error(), MaxErrorDetail)
		logging.WarnWithContext(logger, "relocation failed", "relocate_failed",
			logging.String(logging.FieldFile, name),
			logging.String("destination", destDir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, relocationHint(err)),
			logging.String(logging.FieldImpact, "file left in source directory"),
		)
		return out
	}

	out.Success = true
	out.Operation = op
	out.DestinationDir = destDir
	out.FinalName = final
	logger.Debug("file relocated",
		logging.String(logging.FieldFile, name),
		logging.String(logging.FieldKind, c.Kind.String()),
		logging.String("final_name", final),
		logging.String("operation", op.String()),
		logging.Bool("dry_run", r.opts.DryRun),
	)
	return out
}

func (r *Relocator) destination(kind signature.Kind) (dir, canonicalExt string, ok bool) {
	switch kind {
	case signature.Audio:
		return r.layout.AudioDir, audioExtension, true
	case signature.Video:
		return r.layout.VideoDir, videoExtension, true
	default:
		if !r.opts.CreateUnknown {
			return "", "", false
		}
		return r.layout.UnknownDir, "", true
	}
}

// correctedName swaps the extension for canonical when they disagree. An empty
// canonical keeps the original name.
func correctedName(name, canonical string) (string, Operation) {
	if canonical == "" {
		return name, OpMovedOnly
	}
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, canonical) {
		return name, OpMovedOnly
	}
	return strings.TrimSuffix(name, ext) + canonical, OpMovedAndRenamed
}

func (r *Relocator) place(src, dir, desired string) (string, error) {
	if r.opts.DryRun {
		return r.reserved.Reserve(dir, desired)
	}
	release := r.locks.Lock(dir)
	defer release()
	return fileutil.MoveUnique(src, dir, desired)
}

func relocationHint(err error) string {
	switch {
	case fileutil.IsCrossDevice(err):
		return "keep the managed folders on the same filesystem as the source"
	case errors.Is(err, fileutil.ErrNoFreeName):
		return "clear out numbered duplicates in the destination folder"
	default:
		return "check permissions on the source and destination directories"
	}
}
