package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "phone",
	"provider", "confirmed", "created_at", "updated_at",
}

type UsersRepo struct {
	base
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{base: newBase(db)}
}

// GetGuestByEmail finds the guest-provider user for an email.
func (r *UsersRepo) GetGuestByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email, "provider": string(entities.ProviderGuest)})
}

// GetRegisteredByEmail finds a non-guest user with the given email.
func (r *UsersRepo) GetRegisteredByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.findOne(ctx, sq.And{
		sq.Eq{"email": email},
		sq.NotEq{"provider": string(entities.ProviderGuest)},
	})
}

func (r *UsersRepo) findOne(ctx context.Context, pred sq.Sqlizer) (entities.User, error) {
	query, args := r.qb.Select(userColumns...).
		From("users").
		Where(pred).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(user), nil
}

func (r *UsersRepo) CreateUser(ctx context.Context, u entities.User) error {
	query, args := r.qb.Insert("users").
		Columns(userColumns...).
		Values(
			u.ID, u.Email, nullString(u.FirstName), nullString(u.LastName), nullString(u.Phone),
			string(u.Provider), u.Confirmed, u.CreatedAt, u.UpdatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entities.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateGuestContact overwrites the mutable contact fields of a guest
// record. Guest identity is contact info, not a fixed profile.
func (r *UsersRepo) UpdateGuestContact(ctx context.Context, userID, firstName, lastName, phone string) error {
	query, args := r.qb.Update("users").
		Set("first_name", nullString(firstName)).
		Set("last_name", nullString(lastName)).
		Set("phone", nullString(phone)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": userID, "provider": string(entities.ProviderGuest)}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update guest contact: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
