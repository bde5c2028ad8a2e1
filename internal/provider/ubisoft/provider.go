// Package ubisoft discovers games under Ubisoft Connect install roots.
// Ubisoft exposes no add-on catalog, so its games carry no add-ons.
package ubisoft

import (
	"context"
	"path/filepath"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
	"github.com/spf13/afero"
)

// Provider implements domain.Provider for Ubisoft Connect. Each directory
// directly under an install root is one game, identified by its name.
type Provider struct {
	fs      afero.Fs
	roots   []string
	scanner *gamedir.Scanner
}

func NewProvider(fs afero.Fs, roots []string, scanner *gamedir.Scanner) *Provider {
	return &Provider{fs: fs, roots: roots, scanner: scanner}
}

func (p *Provider) Platform() domain.Platform { return domain.PlatformUbisoft }

func (p *Provider) InstalledPrograms(ctx context.Context) ([]domain.InstalledProgram, error) {
	seen := make(map[string]bool)
	var programs []domain.InstalledProgram
	for _, root := range p.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := afero.ReadDir(p.fs, root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || seen[entry.Name()] {
				continue
			}
			seen[entry.Name()] = true
			programs = append(programs, domain.InstalledProgram{
				ID:         entry.Name(),
				Name:       entry.Name(),
				InstallDir: filepath.Join(root, entry.Name()),
			})
		}
	}
	return programs, nil
}

func (p *Provider) ExecutableDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.ExecutableDirectories(ctx, installDir)
}

func (p *Provider) LibraryDirectories(ctx context.Context, installDir string) ([]string, error) {
	return p.scanner.LibraryDirectories(ctx, installDir, domain.PlatformUbisoft)
}

func (p *Provider) Primary() domain.MetadataSource   { return nil }
func (p *Provider) Secondary() domain.MetadataSource { return nil }
func (p *Provider) Throttled() bool                  { return false }
