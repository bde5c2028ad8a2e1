// Package blocklist decides which installed programs are never scanned
// because they ship anti-cheat protection.
package blocklist

import (
	"path/filepath"
	"slices"

	"github.com/mmcdole/dlcscan/internal/config"
	"github.com/spf13/afero"
)

// List matches programs by exact name or by a protection directory inside
// their install directory. Programs named in Exceptions skip the directory check.
type List struct {
	fs          afero.Fs
	enabled     bool
	names       []string
	directories []string
	exceptions  []string
}

// New builds a block list from configuration.
// With blockProtected false nothing is ever blocked.
func New(fs afero.Fs, cfg config.BlockListConfig, blockProtected bool) *List {
	return &List{
		fs:          fs,
		enabled:     blockProtected,
		names:       cfg.Names,
		directories: cfg.Directories,
		exceptions:  cfg.Exceptions,
	}
}

// IsBlocked reports whether the program must be skipped
func (l *List) IsBlocked(name, directory string) bool {
	if !l.enabled {
		return false
	}
	if slices.Contains(l.names, name) {
		return true
	}
	if directory == "" || slices.Contains(l.exceptions, name) {
		return false
	}
	for _, sub := range l.directories {
		if ok, _ := afero.DirExists(l.fs, filepath.Join(directory, sub)); ok {
			return true
		}
	}
	return false
}
