package main

import (
	"strings"
	"testing"

	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/search"
)

func TestResolveRequest(t *testing.T) {
	stellaris := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "281990"}
	hoi := domain.ProgramKey{Platform: domain.PlatformSteam, ID: "394360"}
	catalog := []discovery.CatalogEntry{
		{Key: stellaris, Name: "Stellaris"},
		{Key: hoi, Name: "Hearts of Iron IV"},
	}
	saved := []domain.ProgramKey{hoi}

	tests := []struct {
		name     string
		opts     options
		headless bool
		want     int
		first    domain.ProgramKey
	}{
		{"all flag", options{all: true}, false, 2, stellaris},
		{"game query", options{games: gameFlags{"hearts"}}, false, 1, hoi},
		{"headless uses saved request", options{}, true, 1, hoi},
		{"interactive defers to picker", options{}, false, 0, domain.ProgramKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := resolveRequest(search.NewService(nil), catalog, tt.opts, tt.headless, saved)
			if len(got) != tt.want {
				t.Fatalf("got %v, want %d keys", got, tt.want)
			}
			if tt.want > 0 && got[0] != tt.first {
				t.Errorf("first = %v, want %v", got[0], tt.first)
			}
		})
	}

	got, unmatched := resolveRequest(search.NewService(nil), catalog, options{games: gameFlags{"nope"}}, true, saved)
	if len(got) != 0 || len(unmatched) != 1 {
		t.Errorf("unmatched query: got %v, unmatched %v", got, unmatched)
	}
}

func TestRenderSummary(t *testing.T) {
	sels := []domain.Selection{{
		Platform: domain.PlatformSteam, ID: "281990", Name: "Stellaris", Enabled: true,
		AllAddOns: map[string]domain.AddOn{
			"1": {Resolution: domain.ResolutionPrimary, Name: "Utopia"},
			"2": domain.UnresolvedAddOn(),
		},
		SelectedAddOns: map[string]domain.AddOn{"1": {Resolution: domain.ResolutionPrimary, Name: "Utopia"}},
	}}
	out := renderSummary(sels, discovery.Result{Committed: []domain.ProgramKey{{Platform: domain.PlatformSteam, ID: "281990"}}})

	for _, want := range []string{"1 programs scanned", "Stellaris", "1/2 add-ons", "1 unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
