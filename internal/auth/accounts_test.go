package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam-scheduler/internal/auth/authtest"
)

func newAccounts() *Accounts {
	return NewAccounts(authtest.NewUsers(), NewTokens(testSecret, 15*time.Minute), time.Hour, zerolog.Nop())
}

func TestRegisterValidation(t *testing.T) {
	a := newAccounts()
	ctx := context.Background()

	tests := []struct {
		name, email, password, user string
		want                        error
	}{
		{"empty email", "", "testpass123", "X", ErrMissingCredentials},
		{"empty password", "a@b.com", "", "X", ErrMissingCredentials},
		{"empty name", "a@b.com", "testpass123", " ", ErrMissingCredentials},
		{"short password", "a@b.com", "short", "X", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, tt.password, tt.user)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAccounts()
	ctx := context.Background()

	s, err := a.Register(ctx, "Recepcao@Clinica.com", "testpass123", "Recepção")
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
	assert.Equal(t, "recepcao@clinica.com", s.User.Email)

	claims, err := a.Tokens().Parse(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UserID)

	_, err = a.Register(ctx, "recepcao@clinica.com", "otherpass123", "Other")
	require.ErrorIs(t, err, ErrRegistration)

	got, err := a.Login(ctx, "recepcao@clinica.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, got.User.ID)

	_, err = a.Login(ctx, "recepcao@clinica.com", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "nobody@clinica.com", "testpass123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	a := newAccounts()
	ctx := context.Background()

	s, err := a.Register(ctx, "staff@clinica.com", "testpass123", "Staff")
	require.NoError(t, err)

	next, err := a.Refresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, s.RefreshToken, next.RefreshToken)

	// replaying the rotated token kills the whole family
	_, err = a.Refresh(ctx, s.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
	_, err = a.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = a.Refresh(ctx, "unknown")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshExpired(t *testing.T) {
	a := newAccounts()
	ctx := context.Background()
	s, err := a.Register(ctx, "staff@clinica.com", "testpass123", "Staff")
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Refresh(ctx, s.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogoutRevokes(t *testing.T) {
	a := newAccounts()
	ctx := context.Background()
	s, err := a.Register(ctx, "staff@clinica.com", "testpass123", "Staff")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, s.RefreshToken))
	require.NoError(t, a.Logout(ctx, "unknown"))

	_, err = a.Refresh(ctx, s.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
