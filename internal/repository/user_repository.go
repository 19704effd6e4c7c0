package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/utils"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, role, name, phone, address, is_active, created_at, updated_at`

// Create inserts user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		id, email, hash, role, now, now)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// IsProfileComplete reports whether the user has name, phone and address set.
func (r *UserRepo) IsProfileComplete(ctx context.Context, id string) (bool, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.ProfileComplete(), nil
}

// UpdateProfile overwrites the user's contact details.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, name, phone, address string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, address=?, updated_at=? WHERE id=?",
		strings.TrimSpace(name), strings.TrimSpace(phone), strings.TrimSpace(address), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	// MySQL reports zero affected rows when the values are unchanged.
	var exists int
	if err := r.DB.GetContext(ctx, &exists, "SELECT COUNT(*) FROM users WHERE id=?", id); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes the user's role.
func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role=?, updated_at=? WHERE id=?", role, time.Now().UTC(), id)
	return err
}
