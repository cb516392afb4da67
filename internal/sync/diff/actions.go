package diff

import (
	"fmt"
	"strings"
)

// ActionType is what a ChangeRecord asks the executor to do
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// ChangeRecord is one planned change. Records are never mutated after
// Compare returns them.
type ChangeRecord struct {
	Path           string     `json:"path"`
	Action         ActionType `json:"action"`
	SourceSize     int64      `json:"sourceSize,omitempty"`
	TargetSize     int64      `json:"targetSize,omitempty"`
	SourceModified string     `json:"sourceModified,omitempty"`
	TargetModified string     `json:"targetModified,omitempty"`
	IsFolder       bool       `json:"isFolder,omitempty"`
}

// Mode selects which side is authoritative
type Mode string

const (
	// ModeMirror makes the target an exact copy of the source, deleting extras
	ModeMirror Mode = "mirror"
	// ModeOneWayLR copies new and newer files from source to target
	ModeOneWayLR Mode = "one-way-lr"
	// ModeOneWayRL copies new and newer files from target back to source
	ModeOneWayRL Mode = "one-way-rl"
	// ModeTwoWay propagates changes both ways; the newer side wins
	ModeTwoWay Mode = "two-way"
)

// Modes lists every supported mode
func Modes() []Mode {
	return []Mode{ModeMirror, ModeOneWayLR, ModeOneWayRL, ModeTwoWay}
}

// Valid reports whether m is a supported mode
func (m Mode) Valid() bool {
	switch m {
	case ModeMirror, ModeOneWayLR, ModeOneWayRL, ModeTwoWay:
		return true
	}
	return false
}

// ParseMode parses a mode name, case-insensitively
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown sync mode %q (want mirror, one-way-lr, one-way-rl or two-way)", s)
	}
	return m, nil
}
