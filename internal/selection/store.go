// Package selection holds the process-wide registry of Selections, one per
// (platform, program id). Discovery writes into it once per program; the
// tree sync and the installer read from it.
package selection

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// Store is a concurrency-safe keyed registry of Selections.
// Readers always get copies; the only way to change an entry is through
// the Store's methods.
type Store struct {
	mu      sync.RWMutex
	entries map[domain.ProgramKey]*domain.Selection

	// umbrellas maps umbrella entries to the publisher they borrow from
	umbrellas map[domain.ProgramKey]string
}

// NewStore creates an empty registry
func NewStore() *Store {
	return &Store{
		entries:   make(map[domain.ProgramKey]*domain.Selection),
		umbrellas: make(map[domain.ProgramKey]string),
	}
}

// Upsert merges a freshly discovered program into the registry as one
// atomic step and returns the merged entry.
//
// found carries the discovery results: identity, directories, metadata and
// the complete AllAddOns map. Its Enabled and SelectedAddOns are ignored.
//
// Absent entries are created with Enabled = bulk. Present entries keep
// their Enabled flag and selected add-ons unless bulk is set. AllAddOns is
// always replaced. With bulk, every resolved add-on becomes selected.
func (s *Store) Upsert(found domain.Selection, bulk bool) domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := found.Key()
	sel, ok := s.entries[key]
	if !ok {
		sel = &domain.Selection{
			Platform:       found.Platform,
			ID:             found.ID,
			Enabled:        bulk,
			SelectedAddOns: make(map[string]domain.AddOn),
		}
		s.entries[key] = sel
	} else if bulk {
		sel.Enabled = true
	}

	if found.Name != "" {
		sel.Name = found.Name
	}
	if found.Publisher != "" {
		sel.Publisher = found.Publisher
	}
	if found.IconURL != "" {
		sel.IconURL = found.IconURL
	}
	if found.ProductURL != "" {
		sel.ProductURL = found.ProductURL
	}
	if found.WebsiteURL != "" {
		sel.WebsiteURL = found.WebsiteURL
	}
	sel.RootDirectory = found.RootDirectory
	sel.ExecutableDirectories = slices.Clone(found.ExecutableDirectories)
	sel.LibraryDirectories = slices.Clone(found.LibraryDirectories)

	sel.AllAddOns = maps.Clone(found.AllAddOns)
	if sel.AllAddOns == nil {
		sel.AllAddOns = make(map[string]domain.AddOn)
	}
	if sel.SelectedAddOns == nil {
		sel.SelectedAddOns = make(map[string]domain.AddOn)
	}

	if bulk {
		for id, addOn := range sel.AllAddOns {
			if addOn.Resolved() {
				sel.SelectedAddOns[id] = addOn
			}
		}
	}

	// Selected descriptors follow the latest resolution; ids that vanished
	// from the catalog are dropped
	for id := range sel.SelectedAddOns {
		addOn, known := sel.AllAddOns[id]
		if !known {
			delete(sel.SelectedAddOns, id)
			continue
		}
		sel.SelectedAddOns[id] = addOn
	}

	s.refreshExtras(sel)
	return sel.Clone()
}

// FindByKey returns a copy of the entry for key
func (s *Store) FindByKey(key domain.ProgramKey) (domain.Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.entries[key]
	if !ok {
		return domain.Selection{}, false
	}
	return sel.Clone(), true
}

// FindAddOnOwner returns the entry on platform whose known add-ons contain
// addOnID. When several programs list the same id the first in All order wins.
func (s *Store) FindAddOnOwner(platform domain.Platform, addOnID string) (domain.Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owner *domain.Selection
	for key, sel := range s.entries {
		if key.Platform != platform {
			continue
		}
		if _, ok := sel.AllAddOns[addOnID]; !ok {
			continue
		}
		if owner == nil || compareSelections(*sel, *owner) < 0 {
			owner = sel
		}
	}
	if owner == nil {
		return domain.Selection{}, false
	}
	return owner.Clone(), true
}

// All returns copies of every entry, ordered by platform scan order then name
func (s *Store) All() []domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Selection, 0, len(s.entries))
	for _, sel := range s.entries {
		out = append(out, sel.Clone())
	}
	sortSelections(out)
	return out
}

// AllEnabled returns copies of every enabled entry
func (s *Store) AllEnabled() []domain.Selection {
	return slices.DeleteFunc(s.All(), func(sel domain.Selection) bool {
		return !sel.Enabled
	})
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SetEnabled flips a program's enabled flag
func (s *Store) SetEnabled(key domain.ProgramKey, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrSelectionNotFound)
	}
	sel.Enabled = enabled
	s.refreshExtras(sel)
	return nil
}

// ToggleAddOn adds or removes addOnID from a program's selected add-ons.
// Only add-ons in AllAddOns can be selected.
func (s *Store) ToggleAddOn(key domain.ProgramKey, addOnID string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrSelectionNotFound)
	}
	addOn, known := sel.AllAddOns[addOnID]
	if !known {
		return fmt.Errorf("%s/%s: %w", key, addOnID, domain.ErrAddOnNotFound)
	}
	if selected {
		sel.SelectedAddOns[addOnID] = addOn
	} else {
		delete(sel.SelectedAddOns, addOnID)
	}
	s.refreshExtras(sel)
	return nil
}

// Retain drops every entry whose key is not in keep and returns how many
// were removed. Used after a run so deselected programs disappear.
func (s *Store) Retain(keep []domain.ProgramKey) int {
	wanted := make(map[domain.ProgramKey]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.entries {
		if _, ok := wanted[key]; !ok {
			delete(s.entries, key)
			delete(s.umbrellas, key)
			removed++
		}
	}
	for key := range s.umbrellas {
		s.populateExtras(key)
	}
	return removed
}

// PopulateExtras fills an umbrella entry's Extras with the add-ons of every
// other entry published by publisher. Enabled entries are used when there
// are any; otherwise all matching entries are borrowed with every add-on
// counted as selected. The umbrella stays registered: later changes to a
// matching entry recompute its extras.
func (s *Store) PopulateExtras(umbrella domain.ProgramKey, publisher string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[umbrella]; !ok {
		return fmt.Errorf("%s: %w", umbrella, domain.ErrSelectionNotFound)
	}
	s.umbrellas[umbrella] = publisher
	s.populateExtras(umbrella)
	return nil
}

// refreshExtras recomputes every umbrella that borrows from changed.
// Callers hold the write lock.
func (s *Store) refreshExtras(changed *domain.Selection) {
	for key, publisher := range s.umbrellas {
		if key != changed.Key() && strings.EqualFold(changed.Publisher, publisher) {
			s.populateExtras(key)
		}
	}
}

// populateExtras rebuilds one registered umbrella. Callers hold the write lock.
func (s *Store) populateExtras(umbrella domain.ProgramKey) {
	target, ok := s.entries[umbrella]
	if !ok {
		return
	}
	publisher := s.umbrellas[umbrella]

	var candidates []*domain.Selection
	for key, sel := range s.entries {
		if key != umbrella && strings.EqualFold(sel.Publisher, publisher) {
			candidates = append(candidates, sel)
		}
	}
	slices.SortFunc(candidates, func(a, b *domain.Selection) int {
		return compareSelections(*a, *b)
	})

	target.Extras = nil
	target.ExtraSelected = nil
	for _, sel := range candidates {
		if !sel.Enabled {
			continue
		}
		target.Extras = append(target.Extras, group(sel, sel.AllAddOns))
		target.ExtraSelected = append(target.ExtraSelected, group(sel, sel.SelectedAddOns))
	}
	if len(target.Extras) > 0 {
		return
	}
	for _, sel := range candidates {
		target.Extras = append(target.Extras, group(sel, sel.AllAddOns))
		target.ExtraSelected = append(target.ExtraSelected, group(sel, sel.AllAddOns))
	}
}

func group(sel *domain.Selection, addOns map[string]domain.AddOn) domain.AddOnGroup {
	return domain.AddOnGroup{ProgramID: sel.ID, Name: sel.Name, AddOns: maps.Clone(addOns)}
}

func sortSelections(sels []domain.Selection) {
	slices.SortFunc(sels, compareSelections)
}

func compareSelections(a, b domain.Selection) int {
	if a.Platform != b.Platform {
		return platformRank(a.Platform) - platformRank(b.Platform)
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func platformRank(p domain.Platform) int {
	for i, known := range domain.AllPlatforms() {
		if p == known {
			return i
		}
	}
	return len(domain.AllPlatforms())
}
