package entities

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Theme is the preferred color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Profile limits.
const (
	MaxNameLength    = 120
	MaxDonationCodes = 50
)

// Profile stores user preferences.
type Profile struct {
	Name          string
	Theme         Theme
	DonationCodes []string
}

// NewProfile returns the default profile.
func NewProfile() *Profile {
	return &Profile{
		Theme:         ThemeSystem,
		DonationCodes: []string{},
	}
}

// SanitizeTheme falls back to the system theme for unknown values.
func SanitizeTheme(theme string) Theme {
	switch t := Theme(theme); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t
	default:
		return ThemeSystem
	}
}

// TruncateName cuts a display name to MaxNameLength runes.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}

// SetName updates the display name.
func (p *Profile) SetName(name string) {
	p.Name = TruncateName(name)
}

// SetTheme updates the theme.
func (p *Profile) SetTheme(theme string) {
	p.Theme = SanitizeTheme(theme)
}

// AddDonationCode stores a trimmed, unique donation code.
func (p *Profile) AddDonationCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || slices.Contains(p.DonationCodes, code) || len(p.DonationCodes) >= MaxDonationCodes {
		return false
	}
	p.DonationCodes = append(p.DonationCodes, code)
	return true
}
