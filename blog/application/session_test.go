package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfryer1193/inkfront/blog/domain"
)

func TestSessionGate_Passphrase(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessions()
	gate := NewSessionGate(sessions, newFakeSource())

	assert.False(t, gate.IsAuthenticated(ctx, ""))

	s, err := gate.GrantPassphrase(ctx, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionMethodPassphrase, s.Method)
	assert.NotEmpty(t, s.ID)
	assert.True(t, gate.IsAuthenticated(ctx, s.ID))

	require.NoError(t, gate.Revoke(ctx, s.ID))
	assert.False(t, gate.IsAuthenticated(ctx, s.ID))
}

func TestSessionGate_Lookup(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessions()
	gate := NewSessionGate(sessions, newFakeSource())

	granted, err := gate.Grant(ctx, "octocat", domain.SessionMethodGithub)
	require.NoError(t, err)

	got, ok := gate.Lookup(ctx, granted.ID)
	require.True(t, ok)
	assert.Equal(t, "octocat", got.Subject)
	assert.Equal(t, domain.SessionMethodGithub, got.Method)

	_, ok = gate.Lookup(ctx, "")
	assert.False(t, ok)
	_, ok = gate.Lookup(ctx, "unknown")
	assert.False(t, ok)

	sessions.err = errors.New("disk gone")
	_, ok = gate.Lookup(ctx, granted.ID)
	assert.False(t, ok)
}

func TestSessionGate_GrantPassphraseFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		passphrase string
		sourceErr  error
		wantErr    error
		wantCalls  int
	}{
		{name: "Empty passphrase", passphrase: "  ", wantErr: ErrValidation, wantCalls: 0},
		{name: "Wrong passphrase", passphrase: "nope", wantErr: ErrInvalidPassphrase, wantCalls: 1},
		{name: "API failure", passphrase: "open sesame", sourceErr: errors.New("boom"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newFakeSource()
			source.err = tt.sourceErr
			sessions := newMemorySessions()
			gate := NewSessionGate(sessions, source)

			s, err := gate.GrantPassphrase(ctx, tt.passphrase)
			require.Error(t, err)
			assert.Nil(t, s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.sourceErr != nil {
				assert.ErrorIs(t, err, tt.sourceErr)
			}
			assert.Equal(t, tt.wantCalls, source.calls)
			assert.Empty(t, sessions.sessions)
		})
	}
}

func TestSessionGate_LookupFailureIsNotAuthenticated(t *testing.T) {
	sessions := newMemorySessions()
	gate := NewSessionGate(sessions, newFakeSource())

	s, err := gate.Grant(context.Background(), "octocat", domain.SessionMethodGithub)
	require.NoError(t, err)

	sessions.err = errors.New("db down")
	assert.False(t, gate.IsAuthenticated(context.Background(), s.ID))
}

func TestSessionGate_RevokeUnknown(t *testing.T) {
	gate := NewSessionGate(newMemorySessions(), newFakeSource())
	assert.NoError(t, gate.Revoke(context.Background(), "missing"))
	assert.NoError(t, gate.Revoke(context.Background(), ""))
}
