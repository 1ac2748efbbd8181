package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrLocked        = errors.New("directory locked")
	ErrIO            = errors.New("i/o error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsConfiguration reports whether err carries the configuration marker.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sort failure"
	}
	return strings.Join(parts, ": ")
}
