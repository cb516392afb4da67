// Package diff computes the change records that reconcile two listings.
// Equality is size plus modification time; content is never compared.
package diff

import (
	"sort"

	"github.com/dl-alexandre/gdsync/internal/sync/scanner"
	"github.com/samber/lo"
)

// Result is the outcome of Compare
type Result struct {
	Records     []ChangeRecord `json:"diffs"`
	SourceCount int            `json:"sourceCount"`
	TargetCount int            `json:"targetCount"`
}

// SourceNewer reports whether the source side should win. A missing time
// on either side counts as newer.
func SourceNewer(source, target string) bool {
	return source == "" || target == "" || source > target
}

// Compare returns the records that bring target in line with source under
// mode, sorted by path.
func Compare(source, target scanner.Listing, mode Mode) Result {
	paths := lo.Union(lo.Keys(source), lo.Keys(target))
	sort.Strings(paths)

	var records []ChangeRecord
	for _, p := range paths {
		s, inSource := source[p]
		t, inTarget := target[p]

		switch {
		case !inSource && inTarget:
			if mode == ModeMirror {
				records = append(records, ChangeRecord{Path: p, Action: ActionDelete, IsFolder: t.IsFolder})
			} else if mode == ModeOneWayRL && !t.IsFolder {
				records = append(records, ChangeRecord{
					Path:           p,
					Action:         ActionCreate,
					TargetSize:     t.Size,
					TargetModified: t.ModifiedTime,
				})
			}

		case inSource && !inTarget:
			// folders are created implicitly by their files
			if mode != ModeOneWayRL && !s.IsFolder {
				records = append(records, ChangeRecord{
					Path:           p,
					Action:         ActionCreate,
					SourceSize:     s.Size,
					SourceModified: s.ModifiedTime,
				})
			}

		case s.IsFolder || t.IsFolder:
			// no record for folders present on both sides

		case s.Size != t.Size || s.ModifiedTime != t.ModifiedTime:
			newer := SourceNewer(s.ModifiedTime, t.ModifiedTime)
			if mode == ModeTwoWay ||
				((mode == ModeMirror || mode == ModeOneWayLR) && newer) ||
				(mode == ModeOneWayRL && !newer) {
				records = append(records, ChangeRecord{
					Path:           p,
					Action:         ActionUpdate,
					SourceSize:     s.Size,
					TargetSize:     t.Size,
					SourceModified: s.ModifiedTime,
					TargetModified: t.ModifiedTime,
				})
			}
		}
	}

	return Result{
		Records:     records,
		SourceCount: len(source),
		TargetCount: len(target),
	}
}

// TargetWins reports whether a two-way update copies target to source.
// The source wins ties and whenever a time is missing.
func TargetWins(rec ChangeRecord) bool {
	return rec.SourceModified != "" && rec.TargetModified != "" && rec.SourceModified < rec.TargetModified
}

// Summary counts records per action
type Summary struct {
	Creates int   `json:"creates"`
	Updates int   `json:"updates"`
	Deletes int   `json:"deletes"`
	Bytes   int64 `json:"bytes"`
}

// Summarize counts r's records. Bytes is the payload size of creates and
// updates, taken from whichever side is copied.
func (r Result) Summarize(mode Mode) Summary {
	var s Summary
	for _, rec := range r.Records {
		switch rec.Action {
		case ActionCreate:
			s.Creates++
			s.Bytes += rec.SourceSize + rec.TargetSize
		case ActionUpdate:
			s.Updates++
			if mode == ModeOneWayRL || (mode == ModeTwoWay && TargetWins(rec)) {
				s.Bytes += rec.TargetSize
			} else {
				s.Bytes += rec.SourceSize
			}
		case ActionDelete:
			s.Deletes++
		}
	}
	return s
}
