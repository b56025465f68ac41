package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session methods
const (
	SessionMethodPassphrase = "passphrase"
	SessionMethodGithub     = "github"
)

// Session marks a browser as allowed to reach the editing screens.
// Its presence is the whole check: there is no expiry and no server-side verification of the holder.
type Session struct {
	ID        string
	Subject   string
	Method    string
	CreatedAt time.Time
}

type SessionRepository interface {
	// SaveSession records a session so that later lookups find it
	SaveSession(ctx context.Context, s *Session) error

	// HasSession reports whether a session with the given id exists
	HasSession(ctx context.Context, id string) (bool, error)

	// GetSession retrieves a session, or ErrSessionNotFound
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession forgets a session; deleting an unknown id is not an error
	DeleteSession(ctx context.Context, id string) error
}

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme returns the theme named by s and whether s named one.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), true
	}
	return "", false
}

type PreferenceRepository interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key string, value string) error
}
