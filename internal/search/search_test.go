package search

import (
	"testing"

	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
)

func entries() []discovery.CatalogEntry {
	mk := func(p domain.Platform, id, name string) discovery.CatalogEntry {
		return discovery.CatalogEntry{Key: domain.ProgramKey{Platform: p, ID: id}, Name: name}
	}
	return []discovery.CatalogEntry{
		mk(domain.PlatformSteam, "281990", "Stellaris"),
		mk(domain.PlatformSteam, "394360", "Hearts of Iron IV"),
		mk(domain.PlatformSteam, "1158310", "Crusader Kings III"),
		mk(domain.PlatformEpic, "ns1", "Stellaris: Console Edition"),
		mk(domain.PlatformParadox, "PL", "Paradox Launcher"),
	}
}

func TestRank(t *testing.T) {
	s := NewService(nil)
	tests := []struct {
		name  string
		query string
		want  string // best match name, empty for none
	}{
		{"exact name", "stellaris", "Stellaris"},
		{"prefix", "hearts", "Hearts of Iron IV"},
		{"subsequence", "ck3", ""},
		{"initials across words", "crkings", "Crusader Kings III"},
		{"platform key", "paradox:pl", "Paradox Launcher"},
		{"bare id", "394360", "Hearts of Iron IV"},
		{"no match", "zzz", ""},
		{"blank", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := s.Rank(tt.query, entries())
			if tt.want == "" {
				if len(matches) != 0 {
					t.Errorf("Rank(%q) = %v, want none", tt.query, matches)
				}
				return
			}
			if len(matches) == 0 || matches[0].Entry.Name != tt.want {
				t.Errorf("Rank(%q) best = %v, want %q", tt.query, matches, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	keys, unmatched := NewService(nil).Resolve([]string{"stellaris", "Stellaris", "nothing here"}, entries())
	if len(keys) != 1 || keys[0].ID != "281990" {
		t.Errorf("keys = %v, want only Stellaris once", keys)
	}
	if len(unmatched) != 1 || unmatched[0] != "nothing here" {
		t.Errorf("unmatched = %v", unmatched)
	}
}
