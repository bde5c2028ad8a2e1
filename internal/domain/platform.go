package domain

import (
	"fmt"
	"strings"
)

// Platform identifies a game store / launcher
type Platform string

const (
	PlatformSteam   Platform = "steam"
	PlatformEpic    Platform = "epic"
	PlatformUbisoft Platform = "ubisoft"
	PlatformParadox Platform = "paradox"
)

// AllPlatforms lists every supported platform in scan order.
// Paradox runs last so its umbrella entry can borrow the others' add-ons.
func AllPlatforms() []Platform {
	return []Platform{PlatformSteam, PlatformEpic, PlatformUbisoft, PlatformParadox}
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformSteam:
		return "Steam"
	case PlatformEpic:
		return "Epic"
	case PlatformUbisoft:
		return "Ubisoft"
	case PlatformParadox:
		return "Paradox"
	default:
		return string(p)
	}
}

// ParsePlatform accepts a platform name in any case
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

// ProgramKey is the identity of a Selection: one per (platform, program id)
type ProgramKey struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id"`
}

// String renders the key as platform:id
func (k ProgramKey) String() string {
	return string(k.Platform) + ":" + k.ID
}
