// Package profile persists named sync profiles as .gdsync.json documents.
package profile

import (
	"fmt"

	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/types"
)

// CurrentVersion is written into new profiles
const CurrentVersion = 1

// FolderPair is one source/target pair of a profile
type FolderPair struct {
	Source types.Location `json:"source"`
	Target types.Location `json:"target"`
}

// Profile is a saved sync setup
type Profile struct {
	Version      int          `json:"version"`
	Name         string       `json:"name"`
	FolderPairs  []FolderPair `json:"folderPairs"`
	SyncMode     diff.Mode    `json:"syncMode"`
	Exclude      []string     `json:"exclude,omitempty"`
	SettingsPath string       `json:"settingsPath,omitempty"`
	CreatedAt    string       `json:"createdAt,omitempty"`
	UpdatedAt    string       `json:"updatedAt,omitempty"`
}

// New returns a profile with a single pair
func New(name string, source, target types.Location, mode diff.Mode) *Profile {
	return &Profile{
		Version:     CurrentVersion,
		Name:        name,
		FolderPairs: []FolderPair{{Source: source, Target: target}},
		SyncMode:    mode,
	}
}

// Validate checks the document before it is saved or run
func (p *Profile) Validate() error {
	if p.Version < 1 {
		return fmt.Errorf("profile version must be >= 1, got %d", p.Version)
	}
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if len(p.FolderPairs) == 0 {
		return fmt.Errorf("profile %q has no folder pairs", p.Name)
	}
	for i, pair := range p.FolderPairs {
		if err := pair.Source.Validate(); err != nil {
			return fmt.Errorf("folder pair %d source: %w", i+1, err)
		}
		if err := pair.Target.Validate(); err != nil {
			return fmt.Errorf("folder pair %d target: %w", i+1, err)
		}
	}
	if !p.SyncMode.Valid() {
		return fmt.Errorf("invalid sync mode %q", p.SyncMode)
	}
	return exclude.Validate(p.Exclude)
}
