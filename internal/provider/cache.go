package provider

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// MetadataCache stores earlier metadata answers keyed by source name
type MetadataCache interface {
	GetProgram(source, programID string) (*domain.ProgramMetadata, bool)
	SaveProgram(source, programID string, meta *domain.ProgramMetadata) error
	GetAddOn(source, addOnID string) (*domain.AddOn, bool)
	SaveAddOn(source, addOnID string, addOn *domain.AddOn) error
}

// recorded writes every hit of a remote source into the cache
type recorded struct {
	remote domain.MetadataSource
	cache  MetadataCache
	logger *slog.Logger
}

// Recorded wraps remote so its answers are kept for later offline use
func Recorded(remote domain.MetadataSource, cache MetadataCache, logger *slog.Logger) domain.MetadataSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &recorded{remote: remote, cache: cache, logger: logger}
}

func (r *recorded) Name() string { return r.remote.Name() }

func (r *recorded) Program(ctx context.Context, programID string) (*domain.ProgramMetadata, error) {
	meta, err := r.remote.Program(ctx, programID)
	if err == nil && meta != nil {
		if saveErr := r.cache.SaveProgram(r.Name(), programID, meta); saveErr != nil {
			r.logger.Warn("failed to cache program metadata", "source", r.Name(), "id", programID, "error", saveErr)
		}
	}
	return meta, err
}

func (r *recorded) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	addOn, err := r.remote.AddOn(ctx, addOnID)
	if err == nil && addOn != nil {
		if saveErr := r.cache.SaveAddOn(r.Name(), addOnID, addOn); saveErr != nil {
			r.logger.Warn("failed to cache add-on", "source", r.Name(), "id", addOnID, "error", saveErr)
		}
	}
	return addOn, err
}

// offline answers only from the cache, from what another source recorded
type offline struct {
	source     string
	cache      MetadataCache
	resolution domain.Resolution
}

// Offline serves the answers Recorded kept for source. Descriptors it
// returns are re-tagged with resolution.
func Offline(source string, cache MetadataCache, resolution domain.Resolution) domain.MetadataSource {
	return &offline{source: source, cache: cache, resolution: resolution}
}

func (o *offline) Name() string { return o.source + "-offline" }

func (o *offline) Program(ctx context.Context, programID string) (*domain.ProgramMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, ok := o.cache.GetProgram(o.source, programID)
	if !ok {
		return nil, nil
	}
	if len(meta.AddOns) > 0 {
		retagged := maps.Clone(meta.AddOns)
		for id, addOn := range retagged {
			if addOn.Resolved() {
				addOn.Resolution = o.resolution
				retagged[id] = addOn
			}
		}
		meta.AddOns = retagged
	}
	return meta, nil
}

func (o *offline) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addOn, ok := o.cache.GetAddOn(o.source, addOnID)
	if !ok {
		return nil, nil
	}
	addOn.Resolution = o.resolution
	return addOn, nil
}

// fallback asks the remote source first and serves the cached answer
// when the remote one is unreachable
type fallback struct {
	*recorded
}

// WithFallback records remote's answers and replays them when remote
// fails with anything but cancellation
func WithFallback(remote domain.MetadataSource, cache MetadataCache, logger *slog.Logger) domain.MetadataSource {
	return &fallback{recorded: Recorded(remote, cache, logger).(*recorded)}
}

func (f *fallback) Program(ctx context.Context, programID string) (*domain.ProgramMetadata, error) {
	meta, err := f.recorded.Program(ctx, programID)
	if err == nil || !useCache(ctx, err) {
		return meta, err
	}
	if cached, ok := f.cache.GetProgram(f.Name(), programID); ok {
		f.logger.Debug("serving cached program metadata", "source", f.Name(), "id", programID, "error", err)
		return cached, nil
	}
	return nil, err
}

func (f *fallback) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	addOn, err := f.recorded.AddOn(ctx, addOnID)
	if err == nil || !useCache(ctx, err) {
		return addOn, err
	}
	if cached, ok := f.cache.GetAddOn(f.Name(), addOnID); ok {
		f.logger.Debug("serving cached add-on", "source", f.Name(), "id", addOnID, "error", err)
		return cached, nil
	}
	return nil, err
}

func useCache(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
