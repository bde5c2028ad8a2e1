// Package steam discovers installed Steam apps and their add-ons.
package steam

import (
	"context"
	"log/slog"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
)

// Provider implements domain.Provider for Steam
type Provider struct {
	library   *Library
	scanner   *gamedir.Scanner
	primary   domain.MetadataSource
	secondary domain.MetadataSource
	logger    *slog.Logger
}

// NewProvider wires a Steam provider. Either source may be nil.
func NewProvider(library *Library, scanner *gamedir.Scanner, primary, secondary domain.MetadataSource, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		library:   library,
		scanner:   scanner,
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (p *Provider) Platform() domain.Platform { return domain.PlatformSteam }

// InstalledPrograms lists apps across every library folder. A folder that
// cannot be read is logged and skipped.
func (p *Provider) InstalledPrograms(ctx context.Context) ([]domain.InstalledProgram, error) {
	folders, err := p.library.Folders()
	if err != nil {
		p.logger.Warn("failed to read steam library folders", "error", err)
	}

	seen := make(map[string]bool)
	var programs []domain.InstalledProgram
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		apps, err := p.library.Apps(folder)
		if err != nil {
			p.logger.Warn("failed to read steam library", "folder", folder, "error", err)
			continue
		}
		for _, app := range apps {
			if seen[app.ID] {
				continue
			}
			seen[app.ID] = true
			programs = append(programs, app)
		}
	}
	return programs, nil
}

func (p *Provider) ExecutableDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.ExecutableDirectories(ctx, installDir)
}

func (p *Provider) LibraryDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.LibraryDirectories(ctx, installDir, domain.PlatformSteam)
}

func (p *Provider) Primary() domain.MetadataSource   { return p.primary }
func (p *Provider) Secondary() domain.MetadataSource { return p.secondary }

// Throttled is true: the store API rate-limits hard, so per-add-on lookups
// wait until every app's own query is done
func (p *Provider) Throttled() bool { return true }
