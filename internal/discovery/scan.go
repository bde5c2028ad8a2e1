package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// scanPlatform spawns one task per requested, non-blocked installed program
// and waits for all of them
func (r *run) scanPlatform(ctx context.Context, p domain.Provider, wanted map[string]bool) {
	logger := r.o.logger.With("platform", p.Platform())

	programs, err := p.InstalledPrograms(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("failed to list installed programs", "error", err)
		}
		return
	}

	// Register every program and take its gate hold before any task
	// starts, so no add-on lookup can slip in ahead of a later program
	type pending struct {
		prog    domain.InstalledProgram
		key     domain.ProgramKey
		release func()
	}
	g := newGate()
	var queue []pending
	for _, prog := range programs {
		if !wanted[prog.ID] {
			continue
		}
		key := domain.ProgramKey{Platform: p.Platform(), ID: prog.ID}
		if r.o.isBlocked(prog) {
			logger.Info("skipping blocked program", "id", prog.ID, "name", prog.Name)
			r.record(&r.blocked, key)
			continue
		}
		if ctx.Err() != nil {
			break
		}
		r.startProgram(key, prog.Name)
		queue = append(queue, pending{prog: prog, key: key, release: g.hold()})
	}

	var wg sync.WaitGroup
	for _, item := range queue {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.finishProgram(item.key)
			defer item.release()
			if !r.scanProgram(ctx, p, g, item.prog, item.release) && ctx.Err() == nil {
				r.record(&r.abandoned, item.key)
			}
		}()
	}
	wg.Wait()
}

// scanProgram resolves one program and commits its Selection. It reports
// false when the program was abandoned. release frees the program's hold
// on the platform gate and must be called once the primary per-program
// query has returned.
func (r *run) scanProgram(ctx context.Context, p domain.Provider, g *gate, prog domain.InstalledProgram, release func()) bool {
	key := domain.ProgramKey{Platform: p.Platform(), ID: prog.ID}
	logger := r.o.logger.With("platform", key.Platform, "id", key.ID)

	execDirs, err := p.ExecutableDirectories(ctx, prog.InstallDir)
	if err != nil || len(execDirs) == 0 {
		logger.Debug("no executable directories", "dir", prog.InstallDir, "error", err)
		return false
	}
	libDirs, err := p.LibraryDirectories(ctx, prog.InstallDir)
	if err != nil || libDirs == nil {
		logger.Debug("no SDK library directories", "dir", prog.InstallDir, "error", err)
		return false
	}

	found := domain.Selection{
		Platform:              key.Platform,
		ID:                    key.ID,
		Name:                  prog.Name,
		RootDirectory:         prog.InstallDir,
		ExecutableDirectories: execDirs,
		LibraryDirectories:    libDirs,
	}

	primary, secondary := p.Primary(), p.Secondary()
	if primary == nil && secondary == nil {
		// No catalog: the program is patchable but has no add-ons
		release()
		return r.commit(ctx, found)
	}

	q := r.queryProgram(ctx, primary, secondary, prog.ID, release, logger)
	if ctx.Err() != nil {
		return false
	}
	if q.missed {
		logger.Debug("no source knows the program")
		return false
	}
	if len(q.ids) == 0 {
		logger.Debug("program has no add-ons")
		return false
	}
	q.apply(&found)

	var (
		mu     sync.Mutex
		addOns = make(map[string]domain.AddOn, len(q.ids))
		wg     sync.WaitGroup
	)
	for _, id := range q.ids {
		if ctx.Err() != nil {
			break
		}
		r.startAddOn(key, id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.finishAddOn(key, id)
			addOn, ok := r.resolveAddOn(ctx, p, g, id, q.prefetched)
			if !ok {
				return
			}
			mu.Lock()
			addOns[id] = addOn
			mu.Unlock()
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return false
	}
	found.AllAddOns = addOns
	return r.commit(ctx, found)
}

// commit merges found into the store unless the run was cancelled
func (r *run) commit(ctx context.Context, found domain.Selection) bool {
	if ctx.Err() != nil {
		return false
	}
	merged := r.o.store.Upsert(found, r.opts.BulkSelect)
	r.record(&r.committed, merged.Key())
	r.sink.Committed(merged.Key())
	r.o.logger.Debug("selection committed",
		"platform", merged.Platform,
		"id", merged.ID,
		"addOns", len(merged.AllAddOns),
		"selected", len(merged.SelectedAddOns))
	return true
}

// programQuery is the combined answer of both sources for one program
type programQuery struct {
	primary    *domain.ProgramMetadata
	secondary  *domain.ProgramMetadata
	ids        []string
	prefetched map[string]domain.AddOn
	missed     bool // neither source answered
}

// queryProgram asks the primary source, frees the gate, then asks the
// secondary source. Ids are unioned in source order.
func (r *run) queryProgram(ctx context.Context, primary, secondary domain.MetadataSource, programID string, release func(), logger *slog.Logger) programQuery {
	q := programQuery{prefetched: make(map[string]domain.AddOn)}

	if primary != nil {
		meta, err := primary.Program(ctx, programID)
		if err != nil && !isCancel(err) {
			logger.Debug("primary program query failed", "source", primary.Name(), "error", err)
		}
		q.primary = meta
	}
	release()

	if secondary != nil && ctx.Err() == nil {
		meta, err := secondary.Program(ctx, programID)
		if err != nil && !isCancel(err) {
			logger.Debug("secondary program query failed", "source", secondary.Name(), "error", err)
		}
		q.secondary = meta
	}

	q.missed = q.primary == nil && q.secondary == nil
	seen := make(map[string]bool)
	for _, src := range []struct {
		meta       *domain.ProgramMetadata
		resolution domain.Resolution
	}{
		{q.primary, domain.ResolutionPrimary},
		{q.secondary, domain.ResolutionSecondary},
	} {
		if src.meta == nil {
			continue
		}
		for _, id := range src.meta.AddOnIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			q.ids = append(q.ids, id)
		}
		for id, addOn := range src.meta.AddOns {
			if _, ok := q.prefetched[id]; ok || addOn.Name == "" {
				continue
			}
			if !addOn.Resolved() {
				addOn.Resolution = src.resolution
			}
			q.prefetched[id] = addOn
		}
	}
	return q
}

// apply fills found's metadata from the sources' answers, primary first.
// The installed name wins over any source's name.
func (q programQuery) apply(found *domain.Selection) {
	for _, meta := range []*domain.ProgramMetadata{q.primary, q.secondary} {
		if meta == nil {
			continue
		}
		if found.Name == "" {
			found.Name = meta.Name
		}
		if found.Publisher == "" {
			found.Publisher = meta.Publisher
		}
		if found.IconURL == "" {
			found.IconURL = meta.IconURL
		}
		if found.ProductURL == "" {
			found.ProductURL = meta.ProductURL
		}
		if found.WebsiteURL == "" {
			found.WebsiteURL = meta.WebsiteURL
		}
	}
}

// resolveAddOn names one add-on: prefetched descriptor, then primary, then
// secondary. A double miss gives the unresolved descriptor. It reports
// false only when the run was cancelled.
func (r *run) resolveAddOn(ctx context.Context, p domain.Provider, g *gate, id string, prefetched map[string]domain.AddOn) (domain.AddOn, bool) {
	if addOn, ok := prefetched[id]; ok {
		return addOn, true
	}

	if p.Throttled() {
		if err := g.wait(ctx); err != nil {
			return domain.AddOn{}, false
		}
	}

	for _, src := range []struct {
		source     domain.MetadataSource
		resolution domain.Resolution
	}{
		{p.Primary(), domain.ResolutionPrimary},
		{p.Secondary(), domain.ResolutionSecondary},
	} {
		if src.source == nil {
			continue
		}
		addOn, err := src.source.AddOn(ctx, id)
		if ctx.Err() != nil {
			return domain.AddOn{}, false
		}
		if err != nil {
			r.o.logger.Debug("add-on query failed", "platform", p.Platform(), "addOn", id, "source", src.source.Name(), "error", err)
			continue
		}
		if addOn == nil || addOn.Name == "" {
			continue
		}
		resolved := *addOn
		if !resolved.Resolved() {
			resolved.Resolution = src.resolution
		}
		return resolved, true
	}

	if ctx.Err() != nil {
		return domain.AddOn{}, false
	}
	return domain.UnresolvedAddOn(), true
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
