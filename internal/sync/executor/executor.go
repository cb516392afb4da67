// Package executor applies change records to a pair of endpoints.
package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/endpoint"
	"github.com/dl-alexandre/gdsync/internal/utils"
)

// ProgressFunc is called after every record, whether it was applied,
// skipped or failed
type ProgressFunc func(done, total int, path string)

// Result summarizes an Apply call
type Result struct {
	ItemsDone int      `json:"done"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors"`
	Cancelled bool     `json:"cancelled"`
}

type Executor struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Executor{logger: logger}
}

// Apply executes records in order: deletes first (folders before files,
// shallower folders first), then creates and updates in input order. A
// failed record is reported in Result.Errors and the run continues.
// control may be nil.
func (e *Executor) Apply(ctx context.Context, source, target endpoint.Endpoint, records []diff.ChangeRecord, mode diff.Mode, onProgress ProgressFunc, control *Control) Result {
	if control == nil {
		control = NewControl()
	}
	ordered := Order(records)
	result := Result{Total: len(ordered), Errors: []string{}}

	var deletedFolders []string
	for _, rec := range ordered {
		if control.stopped(ctx) {
			result.Cancelled = true
			e.logger.Info("sync cancelled",
				logging.F("done", result.ItemsDone),
				logging.F("total", result.Total))
			return result
		}

		if rec.Action == diff.ActionDelete && underAny(rec.Path, deletedFolders) {
			e.logger.Debug("skipping delete under removed folder", logging.F("path", rec.Path))
		} else if err := e.applyOne(ctx, source, target, rec, mode); err != nil {
			if ctx.Err() != nil {
				// interrupted mid-transfer: the record is not done and not a failure
				result.Cancelled = true
				e.logger.Info("sync cancelled",
					logging.F("path", rec.Path),
					logging.F("done", result.ItemsDone),
					logging.F("total", result.Total))
				return result
			}
			msg := fmt.Sprintf("%s: %s", rec.Path, utils.ErrorMessage(err))
			result.Errors = append(result.Errors, msg)
			e.logger.Warn("sync item failed",
				logging.F("path", rec.Path),
				logging.F("action", string(rec.Action)),
				logging.F("error", err))
		} else if rec.Action == diff.ActionDelete && rec.IsFolder && mode == diff.ModeMirror {
			deletedFolders = append(deletedFolders, rec.Path)
		}

		result.ItemsDone++
		if onProgress != nil {
			onProgress(result.ItemsDone, result.Total, rec.Path)
		}
	}

	return result
}

func (e *Executor) applyOne(ctx context.Context, source, target endpoint.Endpoint, rec diff.ChangeRecord, mode diff.Mode) error {
	switch rec.Action {
	case diff.ActionDelete:
		if mode != diff.ModeMirror {
			return nil
		}
		return target.Delete(ctx, rec.Path, rec.IsFolder)
	case diff.ActionCreate, diff.ActionUpdate:
		if copiesFromTarget(rec, mode) {
			return transfer(ctx, target, source, rec.Path, rec.TargetModified)
		}
		return transfer(ctx, source, target, rec.Path, rec.SourceModified)
	}
	return fmt.Errorf("unknown action %q", rec.Action)
}

// copiesFromTarget reports whether rec flows from target back to source
func copiesFromTarget(rec diff.ChangeRecord, mode diff.Mode) bool {
	switch mode {
	case diff.ModeOneWayRL:
		return true
	case diff.ModeTwoWay:
		return rec.Action == diff.ActionUpdate && diff.TargetWins(rec)
	}
	return false
}

func transfer(ctx context.Context, from, to endpoint.Endpoint, rel, modTime string) error {
	if src, ok := from.(*endpoint.Local); ok {
		if dst, ok := to.(*endpoint.Local); ok {
			return dst.CopyFrom(ctx, src, rel, modTime)
		}
	}
	data, err := from.Read(ctx, rel)
	if err != nil {
		return err
	}
	return to.Write(ctx, rel, data, modTime)
}

// Order returns a reordered copy of records: deletes first, folder
// deletes before file deletes, folder deletes by ascending path length.
func Order(records []diff.ChangeRecord) []diff.ChangeRecord {
	ordered := make([]diff.ChangeRecord, len(records))
	copy(ordered, records)

	rank := func(r diff.ChangeRecord) int {
		switch {
		case r.Action == diff.ActionDelete && r.IsFolder:
			return 0
		case r.Action == diff.ActionDelete:
			return 1
		}
		return 2
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := rank(ordered[i]), rank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 0 {
			return len(ordered[i].Path) < len(ordered[j].Path)
		}
		return false
	})
	return ordered
}

func underAny(p string, folders []string) bool {
	for _, f := range folders {
		if strings.HasPrefix(p, f+"/") {
			return true
		}
	}
	return false
}
