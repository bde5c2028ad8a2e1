package epic

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/spf13/afero"
)

// Manifests reads the launcher's install manifests
type Manifests struct {
	fs  afero.Fs
	dir string
}

// NewManifests creates a reader over the launcher's Manifests directory
func NewManifests(fs afero.Fs, dir string) *Manifests {
	return &Manifests{fs: fs, dir: dir}
}

// Games returns one program per catalog namespace. Add-on installs (whose
// main game is another app) and unreadable manifests are skipped.
func (m *Manifests) Games() ([]domain.InstalledProgram, error) {
	if m.dir == "" {
		return nil, nil
	}
	if ok, _ := afero.DirExists(m.fs, m.dir); !ok {
		return nil, nil
	}

	paths, err := afero.Glob(m.fs, filepath.Join(m.dir, "*.item"))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var games []domain.InstalledProgram
	for _, path := range paths {
		data, err := afero.ReadFile(m.fs, path)
		if err != nil {
			continue
		}
		var item manifest
		if err := json.Unmarshal(data, &item); err != nil {
			continue
		}
		if item.CatalogNamespace == "" || item.InstallLocation == "" {
			continue
		}
		if item.MainGameAppName != "" && !strings.EqualFold(item.MainGameAppName, item.AppName) {
			continue
		}
		if seen[item.CatalogNamespace] {
			continue
		}
		seen[item.CatalogNamespace] = true
		games = append(games, domain.InstalledProgram{
			ID:         item.CatalogNamespace,
			Name:       item.DisplayName,
			InstallDir: filepath.Clean(item.InstallLocation),
		})
	}
	return games, nil
}
