package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

var (
	ErrMissingCredentials = errors.New("email, password and name are required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrRegistration       = errors.New("registration failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

const minPasswordLen = 8

// UserStore is the persistence the account flows need; *store.Store
// satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.StaffUser) error
	UserByEmail(ctx context.Context, email string) (*model.StaffUser, error)
	UserByID(ctx context.Context, id string) (*model.StaffUser, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, userID, newHash string, newExpiry time.Time) (string, error)
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Session is what a successful login or refresh hands back to the client.
type Session struct {
	User             *model.StaffUser
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type Accounts struct {
	users      UserStore
	tokens     *Tokens
	refreshTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewAccounts(users UserStore, tokens *Tokens, refreshTTL time.Duration, log zerolog.Logger) *Accounts {
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Accounts{users: users, tokens: tokens, refreshTTL: refreshTTL, log: log, now: time.Now}
}

func (a *Accounts) Tokens() *Tokens { return a.tokens }

func (a *Accounts) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.StaffUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// duplicate email, but don't reveal that
			return nil, ErrRegistration
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	a.log.Info().Str("user_id", u.ID).Msg("staff user registered")
	return a.open(ctx, u)
}

func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a.open(ctx, u)
}

// Refresh exchanges raw for a new session. Presenting an already rotated
// token revokes every token the user holds.
func (a *Accounts) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrInvalidRefresh
	}
	rt, err := a.users.RefreshTokenByHash(ctx, HashRefreshToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := a.now()
	if rt.Revoked {
		a.log.Warn().Str("user_id", rt.UserID).Msg("refresh token reuse, revoking all sessions")
		if err := a.users.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
			return nil, fmt.Errorf("revoke refresh tokens: %w", err)
		}
		return nil, ErrInvalidRefresh
	}
	if !rt.Usable(now) {
		return nil, ErrInvalidRefresh
	}

	u, err := a.users.UserByID(ctx, rt.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	newRaw, newHash, err := NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	exp := now.Add(a.refreshTTL)
	if _, err := a.users.RotateRefreshToken(ctx, rt.ID, u.ID, newHash, exp); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// lost a concurrent rotation
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return a.session(u, newRaw, exp)
}

// Logout revokes every refresh token belonging to the holder of raw. An
// unknown token is not an error.
func (a *Accounts) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	rt, err := a.users.RefreshTokenByHash(ctx, HashRefreshToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	if err := a.users.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func (a *Accounts) open(ctx context.Context, u *model.StaffUser) (*Session, error) {
	raw, hash, err := NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	exp := a.now().Add(a.refreshTTL)
	if _, err := a.users.CreateRefreshToken(ctx, u.ID, hash, exp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return a.session(u, raw, exp)
}

func (a *Accounts) session(u *model.StaffUser, refresh string, refreshExp time.Time) (*Session, error) {
	access, accessExp, err := a.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &Session{
		User:             u,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
