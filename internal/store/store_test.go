package store

import (
	"testing"

	"github.com/mmcdole/dlcscan/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProgramCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	meta := &domain.ProgramMetadata{Name: "Foo", Publisher: "Bar", AddOnIDs: []string{"a1", "a2"}}
	if err := s.SaveProgram("steamcmd", "100", meta); err != nil {
		t.Fatalf("SaveProgram() error = %v", err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, ok := s.GetProgram("steamcmd", "100")
	if !ok {
		t.Fatal("GetProgram() miss after reopen")
	}
	if got.Name != "Foo" || len(got.AddOnIDs) != 2 {
		t.Errorf("GetProgram() = %+v", got)
	}
	if _, ok := s.GetProgram("steamstore", "100"); ok {
		t.Error("answers leaked across sources")
	}
}

func TestInvalidateSource(t *testing.T) {
	s := openTemp(t)
	s.SaveAddOn("steamcmd", "1", &domain.AddOn{Resolution: domain.ResolutionHidden, Name: "One"})
	s.SaveAddOn("epic", "1", &domain.AddOn{Resolution: domain.ResolutionPrimary, Name: "Uno"})

	if err := s.InvalidateSource("steamcmd"); err != nil {
		t.Fatalf("InvalidateSource() error = %v", err)
	}
	if _, ok := s.GetAddOn("steamcmd", "1"); ok {
		t.Error("steamcmd entry survived invalidation")
	}
	if got, ok := s.GetAddOn("epic", "1"); !ok || got.Name != "Uno" {
		t.Errorf("epic entry = %+v, %v", got, ok)
	}
}

func TestChoices(t *testing.T) {
	s := openTemp(t)
	if _, ok := s.ReadChoices(); ok {
		t.Fatal("ReadChoices() found choices in a fresh store")
	}

	want := []domain.Choice{{Platform: domain.PlatformSteam, ProgramID: "100", AddOnID: "a1"}}
	if err := s.WriteChoices(want); err != nil {
		t.Fatal(err)
	}
	got, ok := s.ReadChoices()
	if !ok || len(got) != 1 || got[0] != want[0] {
		t.Errorf("ReadChoices() = %v, %v", got, ok)
	}

	// An empty list is still a saved state
	if err := s.WriteChoices([]domain.Choice{}); err != nil {
		t.Fatal(err)
	}
	if got, ok := s.ReadChoices(); !ok || len(got) != 0 {
		t.Errorf("ReadChoices() after empty write = %v, %v", got, ok)
	}

	if err := s.ClearChoices(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.ReadChoices(); ok {
		t.Error("ReadChoices() found choices after ClearChoices")
	}
}

func TestMemoryOnly(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	keys := []domain.ProgramKey{{Platform: domain.PlatformEpic, ID: "ns"}}
	if err := s.SaveScanRequest(keys); err != nil {
		t.Fatal(err)
	}
	got, ok := s.GetScanRequest()
	if !ok || len(got) != 1 || got[0] != keys[0] {
		t.Errorf("GetScanRequest() = %v, %v", got, ok)
	}
	if err := s.InvalidateAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetScanRequest(); ok {
		t.Error("scan request survived InvalidateAll")
	}
}
