package selection

import (
	"errors"
	"sync"
	"testing"

	"github.com/mmcdole/dlcscan/internal/domain"
)

func found(id, name string, addOns map[string]domain.AddOn) domain.Selection {
	return domain.Selection{
		Platform:      domain.PlatformSteam,
		ID:            id,
		Name:          name,
		RootDirectory: "/games/" + name,
		AllAddOns:     addOns,
	}
}

func fooAddOns() map[string]domain.AddOn {
	return map[string]domain.AddOn{
		"a1": {Resolution: domain.ResolutionPrimary, Name: "Foo"},
		"a2": domain.UnresolvedAddOn(),
	}
}

func TestUpsertBulkSelectsResolvedOnly(t *testing.T) {
	s := NewStore()
	got := s.Upsert(found("100", "Game", fooAddOns()), true)

	if !got.Enabled {
		t.Error("Enabled = false, want true with bulk")
	}
	if len(got.AllAddOns) != 2 {
		t.Errorf("AllAddOns = %v, want a1 and a2", got.AllAddOns)
	}
	if _, ok := got.SelectedAddOns["a1"]; !ok || len(got.SelectedAddOns) != 1 {
		t.Errorf("SelectedAddOns = %v, want only a1", got.SelectedAddOns)
	}
	if got.AllAddOns["a2"].Name != domain.UnknownName {
		t.Errorf("a2 name = %q, want %q", got.AllAddOns["a2"].Name, domain.UnknownName)
	}
}

func TestUpsertWithoutBulk(t *testing.T) {
	s := NewStore()
	got := s.Upsert(found("100", "Game", fooAddOns()), false)
	if got.Enabled || len(got.SelectedAddOns) != 0 {
		t.Errorf("new entry without bulk = enabled %v selected %v, want neither", got.Enabled, got.SelectedAddOns)
	}
}

func TestUpsertPreservesUserState(t *testing.T) {
	s := NewStore()
	key := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "100"}
	s.Upsert(found("100", "Game", fooAddOns()), true)

	if err := s.SetEnabled(key, false); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleAddOn(key, "a1", false); err != nil {
		t.Fatal(err)
	}

	addOns := fooAddOns()
	addOns["a3"] = domain.AddOn{Resolution: domain.ResolutionHidden, Name: "Bar"}
	got := s.Upsert(found("100", "Game Renamed", addOns), false)

	if got.Enabled {
		t.Error("Enabled overwritten by non-bulk upsert")
	}
	if len(got.SelectedAddOns) != 0 {
		t.Errorf("SelectedAddOns = %v, want user deselection kept", got.SelectedAddOns)
	}
	if len(got.AllAddOns) != 3 || got.Name != "Game Renamed" {
		t.Errorf("merged = %+v, want catalog and name refreshed", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want one entry per key", s.Len())
	}
}

func TestUpsertPrunesVanishedSelections(t *testing.T) {
	s := NewStore()
	s.Upsert(found("100", "Game", fooAddOns()), true)

	got := s.Upsert(found("100", "Game", map[string]domain.AddOn{
		"a2": {Resolution: domain.ResolutionSecondary, Name: "Now Known"},
	}), false)

	if _, ok := got.SelectedAddOns["a1"]; ok {
		t.Error("a1 still selected after leaving the catalog")
	}
	for id := range got.SelectedAddOns {
		if _, ok := got.AllAddOns[id]; !ok {
			t.Errorf("selected %q not in AllAddOns", id)
		}
	}
}

func TestUpsertConcurrentSameKey(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Upsert(found("100", "Game", fooAddOns()), i%2 == 0)
		}()
	}
	wg.Wait()
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	s := NewStore()
	key := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "100"}
	got := s.Upsert(found("100", "Game", fooAddOns()), true)
	delete(got.SelectedAddOns, "a1")

	again, _ := s.FindByKey(key)
	if _, ok := again.SelectedAddOns["a1"]; !ok {
		t.Error("mutating a returned copy changed the store")
	}
}

func TestFindAddOnOwner(t *testing.T) {
	s := NewStore()
	s.Upsert(found("100", "Game", fooAddOns()), true)
	s.Upsert(found("200", "Other", map[string]domain.AddOn{"b1": {Resolution: domain.ResolutionPrimary, Name: "B"}}), true)

	tests := []struct {
		name     string
		platform domain.Platform
		addOn    string
		wantID   string
		wantOK   bool
	}{
		{"first program", domain.PlatformSteam, "a2", "100", true},
		{"second program", domain.PlatformSteam, "b1", "200", true},
		{"other platform", domain.PlatformEpic, "a1", "", false},
		{"unknown id", domain.PlatformSteam, "zz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, ok := s.FindAddOnOwner(tt.platform, tt.addOn)
			if ok != tt.wantOK || owner.ID != tt.wantID {
				t.Errorf("FindAddOnOwner() = %q, %v, want %q, %v", owner.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestToggleAddOnErrors(t *testing.T) {
	s := NewStore()
	key := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "100"}
	s.Upsert(found("100", "Game", fooAddOns()), false)

	if err := s.ToggleAddOn(key, "nope", true); !errors.Is(err, domain.ErrAddOnNotFound) {
		t.Errorf("ToggleAddOn(unknown add-on) error = %v", err)
	}
	missing := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "999"}
	if err := s.ToggleAddOn(missing, "a1", true); !errors.Is(err, domain.ErrSelectionNotFound) {
		t.Errorf("ToggleAddOn(unknown program) error = %v", err)
	}
	if err := s.SetEnabled(missing, true); !errors.Is(err, domain.ErrSelectionNotFound) {
		t.Errorf("SetEnabled(unknown program) error = %v", err)
	}
}

func TestAllEnabledAndRetain(t *testing.T) {
	s := NewStore()
	s.Upsert(found("100", "Beta", nil), true)
	s.Upsert(found("200", "Alpha", nil), true)
	s.Upsert(found("300", "Gamma", nil), false)

	enabled := s.AllEnabled()
	if len(enabled) != 2 || enabled[0].Name != "Alpha" || enabled[1].Name != "Beta" {
		t.Errorf("AllEnabled() = %v, want Alpha, Beta", enabled)
	}

	removed := s.Retain([]domain.ProgramKey{{Platform: domain.PlatformSteam, ID: "300"}})
	if removed != 2 || s.Len() != 1 {
		t.Errorf("Retain() removed %d, Len() = %d", removed, s.Len())
	}
}

func TestPopulateExtras(t *testing.T) {
	const publisher = "Paradox Interactive"
	umbrella := domain.ProgramKey{Platform: domain.PlatformParadox, ID: "PL"}

	newStore := func(enableFirst bool) *Store {
		s := NewStore()
		s.Upsert(domain.Selection{Platform: domain.PlatformParadox, ID: "PL", Name: "Paradox Launcher"}, true)
		one := found("1", "Stellaris", map[string]domain.AddOn{"s1": {Resolution: domain.ResolutionPrimary, Name: "Utopia"}})
		one.Publisher = publisher
		two := found("2", "HOI", map[string]domain.AddOn{"h1": {Resolution: domain.ResolutionPrimary, Name: "Waking"}})
		two.Publisher = publisher
		s.Upsert(one, enableFirst)
		s.Upsert(two, false)
		s.Upsert(found("3", "Unrelated", nil), true)
		return s
	}

	t.Run("enabled only", func(t *testing.T) {
		s := newStore(true)
		if err := s.PopulateExtras(umbrella, publisher); err != nil {
			t.Fatal(err)
		}
		pl, _ := s.FindByKey(umbrella)
		if len(pl.Extras) != 1 || pl.Extras[0].ProgramID != "1" {
			t.Errorf("Extras = %+v, want Stellaris only", pl.Extras)
		}
	})

	t.Run("fallback to all", func(t *testing.T) {
		s := newStore(false)
		if err := s.PopulateExtras(umbrella, publisher); err != nil {
			t.Fatal(err)
		}
		pl, _ := s.FindByKey(umbrella)
		if len(pl.Extras) != 2 || len(pl.ExtraSelected) != 2 {
			t.Fatalf("Extras = %+v, want both publisher programs", pl.Extras)
		}
		if len(pl.ExtraSelected[0].AddOns) != 1 {
			t.Errorf("fallback ExtraSelected = %+v, want every add-on", pl.ExtraSelected)
		}
	})

	t.Run("follows later changes", func(t *testing.T) {
		s := newStore(true)
		if err := s.PopulateExtras(umbrella, publisher); err != nil {
			t.Fatal(err)
		}
		stellaris := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "1"}
		hoi := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "2"}

		if err := s.ToggleAddOn(stellaris, "s1", false); err != nil {
			t.Fatal(err)
		}
		pl, _ := s.FindByKey(umbrella)
		if len(pl.ExtraSelected) != 1 || len(pl.ExtraSelected[0].AddOns) != 0 {
			t.Errorf("ExtraSelected after deselect = %+v, want Stellaris with nothing selected", pl.ExtraSelected)
		}

		if err := s.SetEnabled(hoi, true); err != nil {
			t.Fatal(err)
		}
		pl, _ = s.FindByKey(umbrella)
		if len(pl.Extras) != 2 {
			t.Errorf("Extras after enabling HOI = %+v, want both", pl.Extras)
		}

		s.Retain([]domain.ProgramKey{umbrella, stellaris})
		pl, _ = s.FindByKey(umbrella)
		if len(pl.Extras) != 1 || pl.Extras[0].ProgramID != "1" {
			t.Errorf("Extras after Retain = %+v, want Stellaris only", pl.Extras)
		}
	})

	t.Run("missing umbrella", func(t *testing.T) {
		s := NewStore()
		if err := s.PopulateExtras(umbrella, publisher); !errors.Is(err, domain.ErrSelectionNotFound) {
			t.Errorf("PopulateExtras() error = %v", err)
		}
	})
}
