package main

import (
	"errors"
	"fmt"
	"time"

	"mpegsort/internal/services"
)

const (
	exitFailure       = 1
	exitConfiguration = 2
	exitLocked        = 3
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, services.ErrLocked):
		return exitLocked
	default:
		return exitFailure
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.1f files/s", rate)
}
