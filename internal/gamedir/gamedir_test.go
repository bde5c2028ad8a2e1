package gamedir

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/spf13/afero"
)

func newFS(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestExecutableDirectories(t *testing.T) {
	fs := newFS(t,
		"/games/Foo/Foo.exe",
		"/games/Foo/bin/x64/Launcher.EXE",
		"/games/Foo/bin/x64/other.exe",
		"/games/Foo/data/readme.txt",
	)
	got, err := New(fs).ExecutableDirectories(context.Background(), "/games/Foo")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/games/Foo", "/games/Foo/bin/x64"}
	if !slices.Equal(got, want) {
		t.Errorf("ExecutableDirectories() = %v, want %v", got, want)
	}
}

func TestLibraryDirectories(t *testing.T) {
	fs := newFS(t,
		"/games/Foo/Foo.exe",
		"/games/Foo/bin/steam_api64.dll",
		"/games/Bar/Engine/EOSSDK-Win64-Shipping.dll",
		"/games/Baz/uplay_r1_loader64.dll",
	)
	scanner := New(fs)
	ctx := context.Background()

	tests := []struct {
		name     string
		root     string
		platform domain.Platform
		want     []string
	}{
		{"steam", "/games/Foo", domain.PlatformSteam, []string{"/games/Foo/bin"}},
		{"epic", "/games/Bar", domain.PlatformEpic, []string{"/games/Bar/Engine"}},
		{"ubisoft", "/games/Baz", domain.PlatformUbisoft, []string{"/games/Baz"}},
		{"paradox accepts steam", "/games/Foo", domain.PlatformParadox, []string{"/games/Foo/bin"}},
		{"wrong sdk", "/games/Foo", domain.PlatformEpic, nil},
		{"missing root", "/games/None", domain.PlatformSteam, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanner.LibraryDirectories(ctx, tt.root, tt.platform)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("LibraryDirectories() = %v, want %v", got, tt.want)
			}
			if tt.want == nil && got != nil {
				t.Error("absent libraries must be reported as nil")
			}
		})
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	fs := newFS(t, "/games/Foo/Foo.exe")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(fs).ExecutableDirectories(ctx, "/games/Foo"); !errors.Is(err, context.Canceled) {
		t.Errorf("ExecutableDirectories() error = %v, want context.Canceled", err)
	}
}
