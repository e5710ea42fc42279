// Package authtest holds an in-memory account store for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

// Users is an in-memory stand-in for the users and refresh_tokens tables.
type Users struct {
	mu     sync.Mutex
	users  map[string]*model.StaffUser
	tokens map[string]*store.RefreshToken
}

func NewUsers() *Users {
	return &Users{users: map[string]*model.StaffUser{}, tokens: map[string]*store.RefreshToken{}}
}

func (m *Users) CreateUser(_ context.Context, u *model.StaffUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Email == u.Email {
			return store.ErrConflict
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Users) UserByEmail(_ context.Context, email string) (*model.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Users) UserByID(_ context.Context, id string) (*model.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Users) CreateRefreshToken(_ context.Context, userID, hash string, exp time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.tokens[hash] = &store.RefreshToken{ID: id, UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return id, nil
}

func (m *Users) RefreshTokenByHash(_ context.Context, hash string) (*store.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (m *Users) RotateRefreshToken(_ context.Context, oldID, userID, newHash string, exp time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rt := range m.tokens {
		if rt.ID == oldID && !rt.Revoked {
			id := uuid.New().String()
			rt.Revoked = true
			rt.ReplacedBy = &id
			m.tokens[newHash] = &store.RefreshToken{ID: id, UserID: userID, TokenHash: newHash, ExpiresAt: exp}
			return id, nil
		}
	}
	return "", store.ErrNotFound
}

func (m *Users) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rt := range m.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}
