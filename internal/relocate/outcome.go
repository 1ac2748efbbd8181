package relocate

import (
	"fmt"
	"strings"
)

// Operation is the closed set of things that can happen to one file.
type Operation int

const (
	OpMovedOnly Operation = iota
	OpMovedAndRenamed
	OpSkippedAlreadySorted
	OpSkippedUnknownType
	OpError
)

var operationNames = map[Operation]string{
	OpMovedOnly:            "moved",
	OpMovedAndRenamed:      "moved_renamed",
	OpSkippedAlreadySorted: "skipped_already_sorted",
	OpSkippedUnknownType:   "skipped_unknown_type",
	OpError:                "error",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// MarshalText renders the operation by name in JSON and TOML output.
func (o Operation) MarshalText() ([]byte, error) {
	if _, ok := operationNames[o]; !ok {
		return nil, fmt.Errorf("unknown operation %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOperation maps a stored operation name back to its value.
func ParseOperation(name string) (Operation, error) {
	name = strings.TrimSpace(name)
	for op, candidate := range operationNames {
		if candidate == name {
			return op, nil
		}
	}
	return OpError, fmt.Errorf("unknown operation %q", name)
}

// Moved reports whether the operation relocated the file.
func (o Operation) Moved() bool {
	return o == OpMovedOnly || o == OpMovedAndRenamed
}

// Skipped reports whether the file was intentionally left in place.
func (o Operation) Skipped() bool {
	return o == OpSkippedAlreadySorted || o == OpSkippedUnknownType
}

// Outcome describes what happened to one file. It is created once by the
// Relocator and never mutated afterwards.
type Outcome struct {
	OriginalName   string    `json:"original_name"`
	SourcePath     string    `json:"source_path"`
	Success        bool      `json:"success"`
	Operation      Operation `json:"operation"`
	DestinationDir string    `json:"destination_dir,omitempty"`
	FinalName      string    `json:"final_name,omitempty"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	DryRun         bool      `json:"dry_run,omitempty"`
}

// DestinationPath joins DestinationDir and FinalName, or returns "" when the
// file was not placed anywhere.
func (o Outcome) DestinationPath() string {
	if o.DestinationDir == "" || o.FinalName == "" {
		return ""
	}
	return joinPath(o.DestinationDir, o.FinalName)
}
