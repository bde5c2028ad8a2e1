package steam

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/spf13/afero"
)

// Library reads the local Steam installation: library folders from
// libraryfolders.vdf and installed apps from appmanifest_*.acf files.
type Library struct {
	fs          afero.Fs
	installPath string
}

// NewLibrary creates a library reader rooted at Steam's install path
func NewLibrary(fs afero.Fs, installPath string) *Library {
	return &Library{fs: fs, installPath: installPath}
}

// Folders returns every library folder, the install path first.
// An absent Steam install gives no folders.
func (l *Library) Folders() ([]string, error) {
	if l.installPath == "" {
		return nil, nil
	}
	if ok, _ := afero.DirExists(l.fs, l.installPath); !ok {
		return nil, nil
	}

	folders := []string{l.installPath}
	seen := map[string]bool{filepath.Clean(l.installPath): true}

	path := filepath.Join(l.installPath, "steamapps", "libraryfolders.vdf")
	doc, err := l.parse(path)
	if err != nil {
		if ok, _ := afero.Exists(l.fs, path); !ok {
			return folders, nil
		}
		return folders, err
	}

	root := lookup(doc, "libraryfolders")
	keys := make([]string, 0, len(root))
	for k := range root {
		// Folder entries have numeric keys; others are bookkeeping
		if _, err := strconv.Atoi(k); err == nil {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		x, _ := strconv.Atoi(a)
		y, _ := strconv.Atoi(b)
		return x - y
	})

	for _, k := range keys {
		var folder string
		switch v := root[k].(type) {
		case string:
			// Old format: "1" "D:\\SteamLibrary"
			folder = v
		case map[string]interface{}:
			folder = lookupString(v, "path")
		}
		if folder == "" {
			continue
		}
		folder = filepath.Clean(folder)
		if seen[folder] {
			continue
		}
		seen[folder] = true
		folders = append(folders, folder)
	}
	return folders, nil
}

// Apps returns the installed apps of one library folder
func (l *Library) Apps(folder string) ([]domain.InstalledProgram, error) {
	manifests, err := afero.Glob(l.fs, filepath.Join(folder, "steamapps", "appmanifest_*.acf"))
	if err != nil {
		return nil, err
	}

	var apps []domain.InstalledProgram
	for _, manifest := range manifests {
		doc, err := l.parse(manifest)
		if err != nil {
			continue
		}
		state := lookup(doc, "AppState")
		id := lookupString(state, "appid")
		installDir := lookupString(state, "installdir")
		if id == "" || installDir == "" {
			continue
		}

		app := domain.InstalledProgram{
			ID:         id,
			Name:       lookupString(state, "name"),
			InstallDir: filepath.Join(folder, "steamapps", "common", installDir),
		}
		app.BuildID, _ = strconv.Atoi(lookupString(state, "buildid"))
		if cfg := lookup(state, "UserConfig"); cfg != nil {
			app.Branch = lookupString(cfg, "BetaKey")
		}
		if app.Branch == "" {
			app.Branch = "public"
		}
		if ok, _ := afero.DirExists(l.fs, app.InstallDir); !ok {
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (l *Library) parse(path string) (map[string]interface{}, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// lookup returns the child object under key, matched case-insensitively
// since Steam is not consistent about key case
func lookup(m map[string]interface{}, key string) map[string]interface{} {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			child, _ := v.(map[string]interface{})
			return child
		}
	}
	return nil
}

func lookupString(m map[string]interface{}, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}
