package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/domain"
)

// SessionGate decides whether a browser may reach the editing screens.
// It is a convenience gate, not a trust boundary: a known session id is all it checks.
type SessionGate struct {
	sessions domain.SessionRepository
	source   domain.ContentSource
	now      func() time.Time
}

func NewSessionGate(sessions domain.SessionRepository, source domain.ContentSource) *SessionGate {
	return &SessionGate{
		sessions: sessions,
		source:   source,
		now:      time.Now,
	}
}

// IsAuthenticated reports whether id names a granted session. Lookup failures count as "no".
func (g *SessionGate) IsAuthenticated(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}

	ok, err := g.sessions.HasSession(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up session")
		return false
	}
	return ok
}

// Lookup returns the granted session named by id. Unknown ids and lookup failures report false.
func (g *SessionGate) Lookup(ctx context.Context, id string) (*domain.Session, bool) {
	if id == "" {
		return nil, false
	}

	s, err := g.sessions.GetSession(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load session")
		return nil, false
	}
	return s, true
}

// GrantPassphrase checks passphrase with the content API and grants a session when it is accepted.
func (g *SessionGate) GrantPassphrase(ctx context.Context, passphrase string) (*domain.Session, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, fmt.Errorf("%w: passphrase is required", ErrValidation)
	}

	valid, err := g.source.ValidatePassphrase(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to validate passphrase: %w", err)
	}
	if !valid {
		return nil, ErrInvalidPassphrase
	}

	return g.Grant(ctx, "", domain.SessionMethodPassphrase)
}

// Grant records a new session for subject.
func (g *SessionGate) Grant(ctx context.Context, subject, method string) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		Method:    method,
		CreatedAt: g.now().UTC(),
	}

	if err := g.sessions.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().Str("method", method).Str("subject", subject).Msg("Session granted")
	return s, nil
}

// Revoke forgets the session. Revoking an unknown or empty id is a no-op.
func (g *SessionGate) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := g.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
