// Package provider builds the platform providers a discovery run scans,
// and the cache wrappers that give remote metadata sources an offline copy.
package provider

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/dlcscan/internal/config"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
	"github.com/mmcdole/dlcscan/internal/provider/epic"
	"github.com/mmcdole/dlcscan/internal/provider/paradox"
	"github.com/mmcdole/dlcscan/internal/provider/steam"
	"github.com/mmcdole/dlcscan/internal/provider/ubisoft"
	"github.com/spf13/afero"
)

// NewProviders creates one provider per enabled platform, in scan order.
// An empty platform list in the config enables every platform.
func NewProviders(cfg *config.Config, fs afero.Fs, cache MetadataCache, logger *slog.Logger) ([]domain.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := Platforms(cfg.Scan.Platforms)
	if err != nil {
		return nil, err
	}

	scanner := gamedir.New(fs)
	providers := make([]domain.Provider, 0, len(enabled))
	for _, platform := range enabled {
		p, err := newProvider(platform, cfg, fs, scanner, cache, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func newProvider(platform domain.Platform, cfg *config.Config, fs afero.Fs, scanner *gamedir.Scanner, cache MetadataCache, logger *slog.Logger) (domain.Provider, error) {
	switch platform {
	case domain.PlatformSteam:
		var primary, secondary domain.MetadataSource
		if cfg.Steam.StoreURL != "" {
			primary = steam.NewStoreClient(cfg.Steam.StoreURL, logger)
		}
		if cfg.Steam.CmdURL != "" {
			secondary = WithFallback(steam.NewCmdClient(cfg.Steam.CmdURL, logger), cache, logger)
		}
		return steam.NewProvider(steam.NewLibrary(fs, cfg.Steam.InstallPath), scanner, primary, secondary, logger), nil

	case domain.PlatformEpic:
		var primary domain.MetadataSource
		if cfg.Epic.GraphQLURL != "" {
			catalog := epic.NewCatalogClient(cfg.Epic.GraphQLURL, logger)
			primary = Recorded(catalog, cache, logger)
		}
		secondary := Offline("epicstore", cache, domain.ResolutionSecondary)
		return epic.NewProvider(epic.NewManifests(fs, cfg.Epic.ManifestsPath), scanner, primary, secondary), nil

	case domain.PlatformUbisoft:
		return ubisoft.NewProvider(fs, cfg.Ubisoft.InstallPaths, scanner), nil

	case domain.PlatformParadox:
		return paradox.NewProvider(fs, cfg.Paradox.InstallPath, scanner), nil

	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}

// Platforms parses configured platform names into scan order.
// Empty means every platform.
func Platforms(names []string) ([]domain.Platform, error) {
	if len(names) == 0 {
		return domain.AllPlatforms(), nil
	}
	want := make(map[domain.Platform]bool, len(names))
	for _, name := range names {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		want[p] = true
	}
	var out []domain.Platform
	for _, p := range domain.AllPlatforms() {
		if want[p] {
			out = append(out, p)
		}
	}
	return out, nil
}
