// Package discovery runs a scan: it fans out over every requested program
// of every platform, resolves each program's add-ons from the platform's
// metadata sources, and commits one merged Selection per program.
package discovery

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/progress"
	"github.com/mmcdole/dlcscan/internal/selection"
)

// RunOptions controls how results merge into existing Selections
type RunOptions struct {
	// BulkSelect enables every scanned program and selects every resolved add-on
	BulkSelect bool
}

// Result summarizes a finished run
type Result struct {
	Committed []domain.ProgramKey // Programs whose Selection was written, in commit order
	Abandoned []domain.ProgramKey // Programs dropped as unusable
	Blocked   []domain.ProgramKey // Requested programs skipped by the block list
	Canceled  bool
}

// CatalogEntry is one installed, non-blocked program offered for scanning
type CatalogEntry struct {
	Key        domain.ProgramKey
	Name       string
	InstallDir string
}

// Orchestrator coordinates discovery runs over a fixed set of providers
type Orchestrator struct {
	providers []domain.Provider
	store     *selection.Store
	blocklist domain.BlockList
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator. blocklist may be nil.
func NewOrchestrator(providers []domain.Provider, store *selection.Store, blocklist domain.BlockList, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		providers: providers,
		store:     store,
		blocklist: blocklist,
		logger:    logger,
	}
}

// Catalog lists every installed program that is not blocked, platform by
// platform. A platform that fails to enumerate is logged and left out.
func (o *Orchestrator) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	for _, p := range o.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		programs, err := p.InstalledPrograms(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			o.logger.Warn("failed to list installed programs", "platform", p.Platform(), "error", err)
			continue
		}
		for _, prog := range programs {
			if o.isBlocked(prog) {
				continue
			}
			entries = append(entries, CatalogEntry{
				Key:        domain.ProgramKey{Platform: p.Platform(), ID: prog.ID},
				Name:       prog.Name,
				InstallDir: prog.InstallDir,
			})
		}
	}
	return entries, nil
}

// Run scans the requested programs and merges the results into the store.
//
// Every program and add-on task reports its own completion, so the
// observer's final report always shows completed == total. Failures of a
// single program or add-on only degrade that entry. Cancelling ctx stops
// all work; Selections committed before the cancellation stay.
func (o *Orchestrator) Run(ctx context.Context, requested []domain.ProgramKey, opts RunOptions, observer domain.ScanObserver) Result {
	o.store.Retain(requested)

	r := newRun(o, opts, observer)

	wanted := make(map[domain.Platform]map[string]bool)
	for _, key := range requested {
		if wanted[key.Platform] == nil {
			wanted[key.Platform] = make(map[string]bool)
		}
		wanted[key.Platform][key.ID] = true
	}

	o.logger.Info("discovery run started", "requested", len(requested), "bulk", opts.BulkSelect)

	var wg sync.WaitGroup
	for _, p := range o.providers {
		ids := wanted[p.Platform()]
		if len(ids) == 0 {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.scanPlatform(ctx, p, ids)
		}()
	}
	wg.Wait()

	if ctx.Err() == nil {
		o.populateExtras(r)
	}
	r.sink.Close()

	result := r.result()
	result.Canceled = ctx.Err() != nil
	o.logger.Info("discovery run finished",
		"committed", len(result.Committed),
		"abandoned", len(result.Abandoned),
		"blocked", len(result.Blocked),
		"canceled", result.Canceled)
	return result
}

func (o *Orchestrator) isBlocked(prog domain.InstalledProgram) bool {
	return o.blocklist != nil && o.blocklist.IsBlocked(prog.Name, prog.InstallDir)
}

// populateExtras lets umbrella programs borrow other programs' add-ons
func (o *Orchestrator) populateExtras(r *run) {
	for _, p := range o.providers {
		umbrella, ok := p.(domain.Umbrella)
		if !ok {
			continue
		}
		for _, key := range r.committedOn(p.Platform()) {
			if err := o.store.PopulateExtras(key, umbrella.UmbrellaPublisher()); err != nil {
				o.logger.Warn("failed to populate extras", "program", key, "error", err)
			}
		}
	}
}

// run is the state of one discovery run
type run struct {
	o    *Orchestrator
	opts RunOptions

	programs          *progress.Aggregator
	addOns            *progress.Aggregator
	remainingPrograms *progress.Remaining
	remainingAddOns   *progress.Remaining
	sink              *progress.Sink

	mu        sync.Mutex
	committed []domain.ProgramKey
	abandoned []domain.ProgramKey
	blocked   []domain.ProgramKey
}

func newRun(o *Orchestrator, opts RunOptions, observer domain.ScanObserver) *run {
	r := &run{
		o:                 o,
		opts:              opts,
		remainingPrograms: progress.NewRemaining(),
		remainingAddOns:   progress.NewRemaining(),
	}
	r.sink = progress.NewSink(observer, r.snapshot)
	r.programs = progress.NewAggregator(r.sink.Notify)
	r.addOns = progress.NewAggregator(r.sink.Notify)
	return r
}

func (r *run) snapshot() domain.ScanProgress {
	return domain.ScanProgress{
		Programs:          r.programs.Snapshot(),
		AddOns:            r.addOns.Snapshot(),
		RemainingPrograms: r.remainingPrograms.Labels(),
		RemainingAddOns:   r.remainingAddOns.Labels(),
	}
}

func (r *run) result() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Result{
		Committed: slices.Clone(r.committed),
		Abandoned: slices.Clone(r.abandoned),
		Blocked:   slices.Clone(r.blocked),
	}
}

func (r *run) committedOn(platform domain.Platform) []domain.ProgramKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []domain.ProgramKey
	for _, key := range r.committed {
		if key.Platform == platform {
			keys = append(keys, key)
		}
	}
	return keys
}

func (r *run) record(list *[]domain.ProgramKey, key domain.ProgramKey) {
	r.mu.Lock()
	*list = append(*list, key)
	r.mu.Unlock()
}

// startProgram registers one pending program unit
func (r *run) startProgram(key domain.ProgramKey, name string) {
	r.remainingPrograms.Add(key.String(), name)
	r.programs.Add(1)
}

func (r *run) finishProgram(key domain.ProgramKey) {
	r.remainingPrograms.Remove(key.String())
	r.programs.Complete()
}

// startAddOn registers one pending add-on unit of the program key
func (r *run) startAddOn(key domain.ProgramKey, id string) {
	r.remainingAddOns.Add(key.String()+"/"+id, id)
	r.addOns.Add(1)
}

func (r *run) finishAddOn(key domain.ProgramKey, id string) {
	r.remainingAddOns.Remove(key.String() + "/" + id)
	r.addOns.Complete()
}
