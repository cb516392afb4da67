// Package sync ties listing, diffing and execution together for one or
// more folder pairs.
package sync

import (
	"context"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/profile"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/endpoint"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/sync/executor"
	"github.com/dl-alexandre/gdsync/internal/sync/scanner"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Engine runs compares and syncs. It keeps no state between calls.
type Engine struct {
	fs       afero.Fs
	store    drive.Store
	matcher  *exclude.Matcher
	logger   logging.Logger
	executor *executor.Executor
}

// NewEngine creates an engine. store may be nil when only local locations
// are used.
func NewEngine(fsys afero.Fs, store drive.Store, logger logging.Logger) *Engine {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Engine{
		fs:       fsys,
		store:    store,
		logger:   logger,
		executor: executor.New(logger),
	}
}

// WithExclude returns a copy of the engine that leaves paths matching
// patterns out of every listing
func (e *Engine) WithExclude(patterns []string) *Engine {
	clone := *e
	clone.matcher = exclude.New(patterns)
	return &clone
}

func (e *Engine) open(loc types.Location) (endpoint.Endpoint, error) {
	return endpoint.Open(loc, endpoint.Deps{
		FS:      e.fs,
		Store:   e.store,
		Matcher: e.matcher,
		Logger:  e.logger,
	})
}

// Compare lists both locations concurrently and diffs them. The first
// listing error aborts the compare.
func (e *Engine) Compare(ctx context.Context, source, target types.Location, mode diff.Mode) (diff.Result, error) {
	if !mode.Valid() {
		return diff.Result{}, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"invalid sync mode: "+string(mode)).Build())
	}

	src, err := e.open(source)
	if err != nil {
		return diff.Result{}, err
	}
	dst, err := e.open(target)
	if err != nil {
		return diff.Result{}, err
	}

	var srcListing, dstListing scanner.Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcListing, err = src.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dstListing, err = dst.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return diff.Result{}, err
	}

	result := diff.Compare(srcListing, dstListing, mode)
	e.logger.Info("compare finished",
		logging.F("source", source.String()),
		logging.F("target", target.String()),
		logging.F("mode", string(mode)),
		logging.F("sourceCount", result.SourceCount),
		logging.F("targetCount", result.TargetCount),
		logging.F("changes", len(result.Records)))
	return result, nil
}

// Sync applies records to freshly opened endpoints
func (e *Engine) Sync(ctx context.Context, source, target types.Location, records []diff.ChangeRecord, mode diff.Mode, onProgress executor.ProgressFunc, control *executor.Control) (executor.Result, error) {
	src, err := e.open(source)
	if err != nil {
		return executor.Result{}, err
	}
	dst, err := e.open(target)
	if err != nil {
		return executor.Result{}, err
	}

	result := e.executor.Apply(ctx, src, dst, records, mode, onProgress, control)
	e.logger.Info("sync finished",
		logging.F("source", source.String()),
		logging.F("target", target.String()),
		logging.F("done", result.ItemsDone),
		logging.F("total", result.Total),
		logging.F("errors", len(result.Errors)),
		logging.F("cancelled", result.Cancelled))
	return result, nil
}

// RunOptions configures Run
type RunOptions struct {
	// DryRun compares every pair without applying anything
	DryRun bool
	// Confirm is called with each pair's compare result before it is
	// applied. Returning false skips the pair.
	Confirm func(pair int, fp profile.FolderPair, result diff.Result) bool
	// OnProgress receives per-record progress tagged with the pair index
	OnProgress func(pair, done, total int, path string)
	Control    *executor.Control
}

// PairResult is the outcome of one folder pair
type PairResult struct {
	Source  types.Location  `json:"source"`
	Target  types.Location  `json:"target"`
	Compare diff.Result     `json:"compare"`
	Sync    executor.Result `json:"sync"`
	Skipped bool            `json:"skipped,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RunResult aggregates every pair of a profile run
type RunResult struct {
	Profile   string       `json:"profile"`
	Mode      diff.Mode    `json:"mode"`
	Pairs     []PairResult `json:"pairs"`
	ItemsDone int          `json:"done"`
	Total     int          `json:"total"`
	Errors    []string     `json:"errors"`
	Cancelled bool         `json:"cancelled"`
}

// Run compares and syncs each pair of p in order. A pair whose compare
// fails is recorded and the run moves on; cancellation stops the run.
func (e *Engine) Run(ctx context.Context, p *profile.Profile, opts RunOptions) (*RunResult, error) {
	if err := p.Validate(); err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}
	if opts.Control == nil {
		opts.Control = executor.NewControl()
	}

	eng := e.WithExclude(p.Exclude)
	out := &RunResult{Profile: p.Name, Mode: p.SyncMode, Errors: []string{}}

	stopped := func() bool { return opts.Control.IsCancelled() || ctx.Err() != nil }

	for i, fp := range p.FolderPairs {
		if stopped() {
			out.Cancelled = true
			break
		}

		pr := PairResult{Source: fp.Source, Target: fp.Target, Sync: executor.Result{Errors: []string{}}}
		cmp, err := eng.Compare(ctx, fp.Source, fp.Target, p.SyncMode)
		if err != nil && stopped() {
			// a listing cut short by cancellation is not a pair failure
			e.logger.Info("compare interrupted", logging.F("profile", p.Name), logging.F("pair", i+1))
			out.Cancelled = true
			break
		}
		if err != nil {
			pr.Error = utils.ErrorMessage(err)
			out.Errors = append(out.Errors, fp.Source.String()+": "+pr.Error)
			e.logger.Error("compare failed",
				logging.F("profile", p.Name),
				logging.F("pair", i+1),
				logging.F("error", err))
			out.Pairs = append(out.Pairs, pr)
			continue
		}
		pr.Compare = cmp

		if opts.DryRun || len(cmp.Records) == 0 || (opts.Confirm != nil && !opts.Confirm(i, fp, cmp)) {
			pr.Skipped = !opts.DryRun && len(cmp.Records) > 0
			out.Pairs = append(out.Pairs, pr)
			continue
		}

		var progress executor.ProgressFunc
		if opts.OnProgress != nil {
			pair := i
			progress = func(done, total int, path string) { opts.OnProgress(pair, done, total, path) }
		}
		res, err := eng.Sync(ctx, fp.Source, fp.Target, cmp.Records, p.SyncMode, progress, opts.Control)
		if err != nil && stopped() {
			out.Cancelled = true
			break
		}
		if err != nil {
			pr.Error = utils.ErrorMessage(err)
			out.Errors = append(out.Errors, fp.Source.String()+": "+pr.Error)
			out.Pairs = append(out.Pairs, pr)
			continue
		}
		pr.Sync = res
		out.Pairs = append(out.Pairs, pr)
		out.ItemsDone += res.ItemsDone
		out.Total += res.Total
		out.Errors = append(out.Errors, res.Errors...)
		if res.Cancelled {
			out.Cancelled = true
			break
		}
	}

	return out, nil
}
