package domain

import "maps"

// Resolution records which source (if any) resolved an add-on's metadata
type Resolution int

const (
	ResolutionUnresolved Resolution = iota
	ResolutionPrimary               // Found by the public primary query
	ResolutionHidden                // Found only by the secondary query, not publicly listed
	ResolutionSecondary             // Found by the secondary/offline query
)

// UnknownName labels add-ons neither source could name
const UnknownName = "Unknown"

// String returns the resolution tag
func (r Resolution) String() string {
	switch r {
	case ResolutionPrimary:
		return "primary"
	case ResolutionHidden:
		return "hidden"
	case ResolutionSecondary:
		return "secondary"
	default:
		return "unresolved"
	}
}

// AddOn describes one downloadable add-on. Values are replaced, never mutated.
type AddOn struct {
	Resolution Resolution `json:"resolution"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
}

// Resolved reports whether a source named the add-on
func (a AddOn) Resolved() bool {
	return a.Resolution != ResolutionUnresolved
}

// UnresolvedAddOn is recorded when both sources miss
func UnresolvedAddOn() AddOn {
	return AddOn{Resolution: ResolutionUnresolved, Name: UnknownName}
}

// AddOnGroup is a named set of add-ons borrowed from another Selection
type AddOnGroup struct {
	ProgramID string           `json:"programId"`
	Name      string           `json:"name"`
	AddOns    map[string]AddOn `json:"addOns"`
}

// Selection is the merged, mutable record of one discovered program's
// patchability and chosen add-ons.
// Invariant: every key of SelectedAddOns is a key of AllAddOns.
type Selection struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Enabled  bool     `json:"enabled"`

	Publisher  string `json:"publisher,omitempty"`
	IconURL    string `json:"iconUrl,omitempty"`
	ProductURL string `json:"productUrl,omitempty"`
	WebsiteURL string `json:"websiteUrl,omitempty"`

	RootDirectory         string   `json:"rootDirectory"`
	ExecutableDirectories []string `json:"executableDirectories"`
	LibraryDirectories    []string `json:"libraryDirectories"`

	AllAddOns      map[string]AddOn `json:"allAddOns"`
	SelectedAddOns map[string]AddOn `json:"selectedAddOns"`

	// Extras aggregate unrelated programs' add-ons under an umbrella entry
	Extras        []AddOnGroup `json:"extras,omitempty"`
	ExtraSelected []AddOnGroup `json:"extraSelected,omitempty"`
}

// Key returns the selection's identity
func (s *Selection) Key() ProgramKey {
	return ProgramKey{Platform: s.Platform, ID: s.ID}
}

// Clone returns a deep copy safe to hand to other goroutines
func (s *Selection) Clone() Selection {
	c := *s
	c.ExecutableDirectories = append([]string(nil), s.ExecutableDirectories...)
	c.LibraryDirectories = append([]string(nil), s.LibraryDirectories...)
	c.AllAddOns = maps.Clone(s.AllAddOns)
	c.SelectedAddOns = maps.Clone(s.SelectedAddOns)
	c.Extras = cloneGroups(s.Extras)
	c.ExtraSelected = cloneGroups(s.ExtraSelected)
	return c
}

func cloneGroups(groups []AddOnGroup) []AddOnGroup {
	if groups == nil {
		return nil
	}
	out := make([]AddOnGroup, len(groups))
	for i, g := range groups {
		out[i] = AddOnGroup{ProgramID: g.ProgramID, Name: g.Name, AddOns: maps.Clone(g.AddOns)}
	}
	return out
}

// Choice is a persisted deviation from the default add-on selection
type Choice struct {
	Platform  Platform `json:"platform"`
	ProgramID string   `json:"programId"`
	AddOnID   string   `json:"addOnId"`
}
