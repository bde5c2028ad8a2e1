// Package paradox exposes the Paradox launcher as a single umbrella
// program. The launcher has no catalog of its own; after a scan it
// borrows the add-ons of every installed game Paradox publishes.
package paradox

import (
	"context"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
	"github.com/spf13/afero"
)

const (
	// LauncherID is the launcher's program id
	LauncherID   = "PL"
	launcherName = "Paradox Launcher"
	publisher    = "Paradox Interactive"
)

// Provider implements domain.Provider and domain.Umbrella
type Provider struct {
	fs          afero.Fs
	installPath string
	scanner     *gamedir.Scanner
}

func NewProvider(fs afero.Fs, installPath string, scanner *gamedir.Scanner) *Provider {
	return &Provider{fs: fs, installPath: installPath, scanner: scanner}
}

func (p *Provider) Platform() domain.Platform { return domain.PlatformParadox }

// InstalledPrograms returns the launcher when it is installed
func (p *Provider) InstalledPrograms(ctx context.Context) ([]domain.InstalledProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.installPath == "" {
		return nil, nil
	}
	if ok, _ := afero.DirExists(p.fs, p.installPath); !ok {
		return nil, nil
	}
	return []domain.InstalledProgram{{
		ID:         LauncherID,
		Name:       launcherName,
		InstallDir: p.installPath,
	}}, nil
}

func (p *Provider) ExecutableDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.ExecutableDirectories(ctx, installDir)
}

func (p *Provider) LibraryDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.LibraryDirectories(ctx, installDir, domain.PlatformParadox)
}

func (p *Provider) Primary() domain.MetadataSource   { return nil }
func (p *Provider) Secondary() domain.MetadataSource { return nil }
func (p *Provider) Throttled() bool                  { return false }

// UmbrellaPublisher names whose games the launcher's extras are drawn from
func (p *Provider) UmbrellaPublisher() string { return publisher }
