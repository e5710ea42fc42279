package store

import (
	"context"

	"exam-scheduler/internal/model"
)

// CreateUser reports a duplicate email as ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *model.StaffUser) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, name) VALUES ($1,$2,$3,$4)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Name,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translate("store.CreateUser", err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	u := &model.StaffUser{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate("store.UserByEmail", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.StaffUser, error) {
	u := &model.StaffUser{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate("store.UserByID", err)
	}
	return u, nil
}
