package sorter

import (
	"time"

	"mpegsort/internal/relocate"
)

// Counts holds the order-independent tallies of a run.
type Counts struct {
	TotalFiles          int `json:"total_files"`
	Processed           int `json:"processed"`
	Succeeded           int `json:"succeeded"`
	Errors              int `json:"errors"`
	Skipped             int `json:"skipped"`
	AudioCount          int `json:"audio_count"`
	VideoCount          int `json:"video_count"`
	UnknownCount        int `json:"unknown_count"`
	ExtensionsCorrected int `json:"extensions_corrected"`
}

// Summary is the finalized result of one run. It is read-only once Run
// returns it.
type Summary struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Mode      Mode      `json:"mode"`
	Workers   int       `json:"workers"`
	DryRun    bool      `json:"dry_run"`
	Cancelled bool      `json:"cancelled"`
	StartedAt time.Time `json:"started_at"`
	Counts
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	FilesPerSecond float64 `json:"files_per_second"`
}

// Balanced reports whether every processed file is accounted for exactly once.
func (s Summary) Balanced() bool {
	return s.Succeeded+s.Errors+s.Skipped == s.Processed && s.Processed <= s.TotalFiles
}

// add folds one outcome into the counters. Bucket counts come from where the
// file landed, never from its content.
func (c *Counts) add(layout relocate.Layout, o relocate.Outcome) {
	c.Processed++
	switch {
	case o.Operation == relocate.OpError || !o.Success:
		c.Errors++
		return
	case o.Operation.Skipped():
		c.Skipped++
		return
	}

	c.Succeeded++
	if o.Operation == relocate.OpMovedAndRenamed {
		c.ExtensionsCorrected++
	}
	switch layout.BucketOf(o.DestinationDir) {
	case relocate.BucketAudio:
		c.AudioCount++
	case relocate.BucketVideo:
		c.VideoCount++
	case relocate.BucketUnknown:
		c.UnknownCount++
	}
}

func (s *Summary) finish(elapsed time.Duration) {
	s.ElapsedSeconds = elapsed.Seconds()
	if s.Processed > 0 && s.ElapsedSeconds > 0 {
		s.FilesPerSecond = float64(s.Processed) / s.ElapsedSeconds
	}
}
