package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"gelateria/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo persists users.
type UserRepo struct {
	*baseRepo[*auth.User]
}

// NewUserRepo creates a user repository.
func NewUserRepo(tm *TxManager) *UserRepo {
	base := newBaseRepo(tm, "users", func() *auth.User { return &auth.User{} })
	base.searchCols = []string{"name", "email"}
	return &UserRepo{baseRepo: base}
}

// GetByEmail retrieves a user by email, case-insensitive.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1)
	return r.FindOne(ctx, q)
}

// GetByVerificationToken retrieves a user whose verification token
// matches and has not expired.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email_verification_token": tokenHash}).
		Where(squirrel.Gt{"email_verification_expire": now}).
		Limit(1)
	return r.FindOne(ctx, q)
}

// GetByResetToken retrieves a user whose password reset token matches
// and has not expired.
func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"reset_password_token": tokenHash}).
		Where(squirrel.Gt{"reset_password_expire": now}).
		Limit(1)
	return r.FindOne(ctx, q)
}

// List retrieves users with filtering and pagination.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.Role != "" {
		q = q.Where(squirrel.Eq{"role": filter.Role})
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tm.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, querier, &users, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// ExistsByEmail checks whether the email is taken, case-insensitive.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(r.table).
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1)

	return r.scanExists(ctx, q)
}

// ExistsByRole checks whether any user carries the role.
func (r *UserRepo) ExistsByRole(ctx context.Context, role auth.Role) (bool, error) {
	q := r.Builder().
		Select("1").
		From(r.table).
		Where(squirrel.Eq{"role": role}).
		Limit(1)

	return r.scanExists(ctx, q)
}

func (r *UserRepo) scanExists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.tm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}
