package paradox

import (
	"context"
	"testing"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/gamedir"
	"github.com/spf13/afero"
)

func TestLauncherDiscovery(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/launcher/bootstrapper-v2.exe", []byte("x"), 0644)
	afero.WriteFile(fs, "/launcher/launcher/steam_api64.dll", []byte("x"), 0644)

	var p domain.Provider = NewProvider(fs, "/launcher", gamedir.New(fs))
	programs, err := p.InstalledPrograms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 1 || programs[0].ID != LauncherID {
		t.Fatalf("InstalledPrograms() = %+v", programs)
	}
	libs, _ := p.LibraryDirectories(context.Background(), "/launcher")
	if len(libs) != 1 || libs[0] != "/launcher/launcher" {
		t.Errorf("LibraryDirectories() = %v", libs)
	}

	umbrella, ok := p.(domain.Umbrella)
	if !ok || umbrella.UmbrellaPublisher() != "Paradox Interactive" {
		t.Error("paradox provider must be an umbrella for Paradox Interactive")
	}
}

func TestLauncherAbsent(t *testing.T) {
	p := NewProvider(afero.NewMemMapFs(), "/launcher", nil)
	programs, err := p.InstalledPrograms(context.Background())
	if err != nil || len(programs) != 0 {
		t.Errorf("InstalledPrograms() = %v, %v", programs, err)
	}
}
