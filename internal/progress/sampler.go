package progress

// Sampler suppresses per-file lines while preserving signal: it emits every
// interval completions and always on the last one.
type Sampler struct {
	interval int
	last     int
}

// NewSampler constructs a sampler. Intervals below one default to ten.
func NewSampler(interval int) *Sampler {
	if interval <= 0 {
		interval = 10
	}
	return &Sampler{interval: interval}
}

// ShouldEmit reports whether the done-th completion out of total deserves a line.
// Repeated or regressing counts never emit twice.
func (s *Sampler) ShouldEmit(done, total int) bool {
	if s == nil {
		return true
	}
	if done <= s.last {
		return false
	}
	if done%s.interval == 0 || (total > 0 && done >= total) {
		s.last = done
		return true
	}
	return false
}

