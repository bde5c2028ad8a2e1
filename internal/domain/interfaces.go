package domain

import "context"

// InstalledProgram is one program a platform reports as installed
type InstalledProgram struct {
	ID         string
	Name       string
	InstallDir string
	Branch     string // Steam beta branch, empty otherwise
	BuildID    int
}

// ProgramMetadata is a metadata source's answer for one program
type ProgramMetadata struct {
	Name       string
	Publisher  string
	IconURL    string
	ProductURL string
	WebsiteURL string

	// AddOnIDs lists every add-on the source knows for the program
	AddOnIDs []string
	// AddOns holds descriptors the source returned alongside the ids;
	// those need no per-add-on lookup
	AddOns map[string]AddOn
}

// MetadataSource answers program and add-on queries for one platform.
// A nil result with a nil error is a miss.
type MetadataSource interface {
	Name() string
	Program(ctx context.Context, programID string) (*ProgramMetadata, error)
	AddOn(ctx context.Context, addOnID string) (*AddOn, error)
}

// Provider exposes one platform's installed programs and metadata sources.
// Every call is independently cancellable and fallible.
type Provider interface {
	Platform() Platform

	// InstalledPrograms returns an empty list, not an error, when the platform is absent
	InstalledPrograms(ctx context.Context) ([]InstalledProgram, error)

	// ExecutableDirectories returns no directories for programs without an injectable layout
	ExecutableDirectories(ctx context.Context, installDir string) ([]string, error)

	// LibraryDirectories returns nil when the program ships no patchable SDK library
	LibraryDirectories(ctx context.Context, installDir string) ([]string, error)

	// Primary and Secondary may be nil; a platform with neither has no add-ons
	Primary() MetadataSource
	Secondary() MetadataSource

	// Throttled reports whether per-add-on lookups must yield to
	// outstanding per-program primary queries
	Throttled() bool
}

// Umbrella is implemented by providers whose programs aggregate other
// programs' add-ons (e.g. the Paradox launcher)
type Umbrella interface {
	UmbrellaPublisher() string
}

// BlockList decides whether a program must never be scanned
type BlockList interface {
	IsBlocked(name, directory string) bool
}

// ChoiceStore persists add-on choices between runs.
// ReadChoices reports false when nothing was ever saved.
type ChoiceStore interface {
	ReadChoices() ([]Choice, bool)
	WriteChoices(choices []Choice) error
}
