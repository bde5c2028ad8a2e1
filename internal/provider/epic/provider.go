// Package epic discovers games installed by the Epic launcher and their
// add-ons.
package epic

import (
	"context"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
)

// Provider implements domain.Provider for Epic. Program ids are catalog
// namespaces; add-on ids are catalog item ids.
type Provider struct {
	manifests *Manifests
	scanner   *gamedir.Scanner
	primary   domain.MetadataSource
	secondary domain.MetadataSource
}

// NewProvider wires an Epic provider. Either source may be nil.
func NewProvider(manifests *Manifests, scanner *gamedir.Scanner, primary, secondary domain.MetadataSource) *Provider {
	return &Provider{
		manifests: manifests,
		scanner:   scanner,
		primary:   primary,
		secondary: secondary,
	}
}

func (p *Provider) Platform() domain.Platform { return domain.PlatformEpic }

func (p *Provider) InstalledPrograms(ctx context.Context) ([]domain.InstalledProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.manifests.Games()
}

func (p *Provider) ExecutableDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.ExecutableDirectories(ctx, installDir)
}

func (p *Provider) LibraryDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.LibraryDirectories(ctx, installDir, domain.PlatformEpic)
}

func (p *Provider) Primary() domain.MetadataSource   { return p.primary }
func (p *Provider) Secondary() domain.MetadataSource { return p.secondary }

// Throttled is false: add-on descriptors come with the namespace query
func (p *Provider) Throttled() bool { return false }
