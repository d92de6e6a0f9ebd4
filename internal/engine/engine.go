// Package engine orchestrates an update pass: select records, resolve each
// against its remote in an isolated workspace, diff the result and rewrite
// the host file.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skaphos/pinkeeper/internal/config"
	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/pinfile"
	"github.com/skaphos/pinkeeper/internal/registry"
	"github.com/skaphos/pinkeeper/internal/resolve"
	"github.com/skaphos/pinkeeper/internal/sortutil"
	"github.com/skaphos/pinkeeper/internal/vcs"
	"github.com/skaphos/pinkeeper/internal/workspace"
)

const maxWorkerChannelBuffer = 100

// Engine is the main orchestrator for pinkeeper operations.
type Engine struct {
	cfg   *config.Config
	query vcs.RemoteQuery
}

// New creates a new Engine. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config, query vcs.RemoteQuery) *Engine {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if query == nil {
		query = vcs.NewGitAdapter(nil)
	}
	return &Engine{cfg: cfg, query: query}
}

// Config returns the engine's config.
func (e *Engine) Config() *config.Config { return e.cfg }

// Query returns the engine's remote query backend.
func (e *Engine) Query() vcs.RemoteQuery { return e.query }

// OutcomeCallback receives each outcome as soon as it is known.
type OutcomeCallback func(model.Outcome)

// UpdateOptions configures a resolution pass.
type UpdateOptions struct {
	// Only restricts resolution to matching names or globs. Empty selects all.
	Only        []string
	Concurrency int
	// Timeout is seconds per repo. Zero uses the config value; negative
	// disables the timeout.
	Timeout   int
	OnOutcome OutcomeCallback
	// WorkspaceBase is the parent for per-repo temp dirs; empty uses os.TempDir.
	WorkspaceBase string
}

// Report is the result of a successful resolution pass.
type Report struct {
	Registry *registry.Registry
	Outcomes []model.Outcome
	Changed  bool

	// Unmatched holds the Only patterns that selected no record.
	Unmatched []string
}

// Update resolves every selected record of reg. The first failure cancels
// the remaining work and is returned without a partial report.
func (e *Engine) Update(ctx context.Context, reg *registry.Registry, opts UpdateOptions) (*Report, error) {
	if reg == nil {
		return nil, errors.New("registry not loaded")
	}
	selector, err := registry.NewSelector(opts.Only)
	if err != nil {
		return nil, err
	}
	concurrency, timeoutSeconds := e.runtime(opts)

	outcomes := make([]model.Outcome, 0, len(reg.Records))
	var pending []model.RepoRecord
	for _, rec := range reg.Records {
		if !selector.Match(rec.Name) {
			out := model.Skipped(rec)
			outcomes = append(outcomes, out)
			emit(opts.OnOutcome, out)
			continue
		}
		pending = append(pending, rec)
	}

	var resolved []model.Outcome
	if concurrency <= 1 {
		resolved, err = e.updateSequential(ctx, pending, opts, timeoutSeconds)
	} else {
		resolved, err = e.updateConcurrent(ctx, pending, opts, concurrency, timeoutSeconds)
	}
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, resolved...)
	sortutil.SortOutcomes(outcomes)

	next, changed := registry.Diff(reg, outcomes)
	return &Report{Registry: next, Outcomes: outcomes, Changed: changed, Unmatched: selector.Unmatched(reg)}, nil
}

func (e *Engine) updateSequential(ctx context.Context, records []model.RepoRecord, opts UpdateOptions, timeoutSeconds int) ([]model.Outcome, error) {
	results := make([]model.Outcome, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := e.resolveRecord(ctx, rec, opts.WorkspaceBase, timeoutSeconds)
		if err != nil {
			return nil, err
		}
		results = append(results, out)
		emit(opts.OnOutcome, out)
	}
	return results, nil
}

func (e *Engine) updateConcurrent(ctx context.Context, records []model.RepoRecord, opts UpdateOptions, concurrency, timeoutSeconds int) ([]model.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		outcome model.Outcome
		err     error
	}

	sem := make(chan struct{}, concurrency)
	out := make(chan result, workerChannelBufferSize(len(records)))
	spawned := 0

	var firstErr error
	results := make([]model.Outcome, 0, len(records))
	collect := func(res result) {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			return
		}
		if firstErr == nil {
			results = append(results, res.outcome)
			emit(opts.OnOutcome, res.outcome)
		}
	}

	received := 0
	for _, rec := range records {
		// Acquire a slot, draining finished workers so the buffer never blocks.
		acquired := false
		for !acquired {
			select {
			case sem <- struct{}{}:
				acquired = true
			case res := <-out:
				received++
				collect(res)
			}
		}
		if firstErr != nil {
			<-sem
			break
		}
		spawned++
		go func(rec model.RepoRecord) {
			defer func() { <-sem }()
			o, err := e.resolveRecord(ctx, rec, opts.WorkspaceBase, timeoutSeconds)
			out <- result{outcome: o, err: err}
		}(rec)
	}

	for ; received < spawned; received++ {
		collect(<-out)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// resolveRecord clones rec into a fresh workspace and resolves it there.
func (e *Engine) resolveRecord(ctx context.Context, rec model.RepoRecord, base string, timeoutSeconds int) (model.Outcome, error) {
	repoCtx := ctx
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		repoCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}

	advancer := &resolve.Advancer{Query: e.query}
	var outcome model.Outcome
	err := workspace.With(base, rec.Name, func(dir string) error {
		url := e.query.RemoteURL(e.cfg.Remote.BaseURL, rec.Name)
		if err := e.query.Clone(repoCtx, url, dir); err != nil {
			return fmt.Errorf("%s: %w", rec.Name, err)
		}
		var err error
		outcome, err = advancer.Resolve(repoCtx, dir, rec)
		return err
	})
	if err != nil {
		return model.Outcome{}, err
	}
	return outcome, nil
}

// RunOptions configures a full pass over a host file.
type RunOptions struct {
	SourcePath string
	DryRun     bool
	Update     UpdateOptions
	// Now stamps the report; nil uses time.Now.
	Now func() time.Time
}

// Run reads the host file, resolves its registry, and rewrites the file once
// when the registry changed and DryRun is false. Any failure leaves the file
// untouched.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*model.UpdateReport, error) {
	if opts.SourcePath == "" {
		return nil, errors.New("source file not set")
	}
	popts := e.cfg.PinfileOptions()
	file, err := pinfile.ReadFile(opts.SourcePath, popts)
	if err != nil {
		return nil, err
	}
	reg := registry.New(file.Records)
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pinfile.ErrConfigCorruption, opts.SourcePath, err)
	}

	rep, err := e.Update(ctx, reg, opts.Update)
	if err != nil {
		return nil, err
	}

	written := false
	if rep.Changed && !opts.DryRun {
		if _, err := file.Rewrite(rep.Registry.Records, popts); err != nil {
			return nil, err
		}
		written = true
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return &model.UpdateReport{
		GeneratedAt: now(),
		Source:      opts.SourcePath,
		Changed:     rep.Changed,
		Written:     written,
		Outcomes:    rep.Outcomes,
		Unmatched:   rep.Unmatched,
	}, nil
}

// runtime returns the effective concurrency and per-repo timeout. A zero
// timeout means none.
func (e *Engine) runtime(opts UpdateOptions) (int, int) {
	defaults := config.DefaultConfig().Defaults

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = e.cfg.Defaults.Concurrency
		if concurrency <= 0 {
			concurrency = defaults.Concurrency
		}
	}
	timeoutSeconds := opts.Timeout
	if timeoutSeconds == 0 {
		timeoutSeconds = e.cfg.Defaults.TimeoutSeconds
		if timeoutSeconds == 0 {
			timeoutSeconds = defaults.TimeoutSeconds
		}
	}
	if timeoutSeconds < 0 {
		timeoutSeconds = 0
	}
	return concurrency, timeoutSeconds
}

func workerChannelBufferSize(entryCount int) int {
	if entryCount <= 0 {
		return 1
	}
	if entryCount > maxWorkerChannelBuffer {
		return maxWorkerChannelBuffer
	}
	return entryCount
}

func emit(cb OutcomeCallback, out model.Outcome) {
	if cb != nil {
		cb(out)
	}
}
