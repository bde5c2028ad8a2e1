// Package gamedir finds the directories inside a program's install tree
// that an unlocker can patch: those holding executables and those holding
// a platform SDK library.
package gamedir

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/spf13/afero"
)

// sdkLibraries lists the SDK file names that mark a patchable directory
var sdkLibraries = map[domain.Platform][]string{
	domain.PlatformSteam: {"steam_api.dll", "steam_api64.dll"},
	domain.PlatformEpic:  {"eossdk-win32-shipping.dll", "eossdk-win64-shipping.dll"},
	domain.PlatformUbisoft: {
		"uplay_r1_loader.dll", "uplay_r1_loader64.dll",
		"upc_r2_loader.dll", "upc_r2_loader64.dll",
	},
}

func init() {
	// Paradox games ship either the Steam or the Epic SDK
	sdkLibraries[domain.PlatformParadox] = slices.Concat(
		sdkLibraries[domain.PlatformSteam],
		sdkLibraries[domain.PlatformEpic],
	)
}

// Scanner walks install directories on a filesystem
type Scanner struct {
	fs afero.Fs
}

// New creates a scanner over fs
func New(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// ExecutableDirectories returns every directory under root that directly
// contains a Windows executable. Sorted, no duplicates.
func (s *Scanner) ExecutableDirectories(ctx context.Context, root string) ([]string, error) {
	return s.collect(ctx, root, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".exe")
	})
}

// LibraryDirectories returns every directory under root that contains one
// of platform's SDK libraries, or nil when there is none.
func (s *Scanner) LibraryDirectories(ctx context.Context, root string, platform domain.Platform) ([]string, error) {
	names := sdkLibraries[platform]
	if len(names) == 0 {
		return nil, nil
	}
	return s.collect(ctx, root, func(name string) bool {
		return slices.Contains(names, strings.ToLower(name))
	})
}

func (s *Scanner) collect(ctx context.Context, root string, match func(name string) bool) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	if ok, err := afero.DirExists(s.fs, root); err != nil || !ok {
		return nil, err
	}

	seen := make(map[string]struct{})
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable sub-trees are skipped
			return nil
		}
		if info.IsDir() || !match(info.Name()) {
			return nil
		}
		seen[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(seen) == 0 {
		return nil, nil
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs, nil
}
