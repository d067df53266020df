package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, salt, full_name, role, department, student_id, year, active, created_at, updated_at`

type userRepository struct {
	DB *DB
}

func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := r.DB.rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)
	id := uuid.NewString()
	var year sql.NullInt64
	if u.Year != nil {
		year = sql.NullInt64{Int64: int64(*u.Year), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		id, u.Username, u.Email, u.PasswordHash, u.Salt, u.FullName, string(u.Role),
		u.Department, u.StudentID, year, u.Active, u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		if r.DB.Dialect.IsUniqueViolation(err) {
			return uniqueUserError(err)
		}
		return err
	}
	u.ID = id
	return nil
}

// uniqueUserError tells a duplicate username from a duplicate email by the violated constraint.
func uniqueUserError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := r.DB.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = $1`)
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := r.DB.rebind(`SELECT ` + userColumns + ` FROM users WHERE username = $1`)
	return scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email)
}

func (r *userRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, r.DB.rebind(query), arg).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := r.DB.rebind(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) (*domain.User, error) {
	query := r.DB.rebind(`
		UPDATE users SET role = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns)
	return scanUser(r.DB.QueryRowContext(ctx, query, string(role), updatedAt.UTC(), id))
}

func (r *userRepository) UpdateActive(ctx context.Context, id string, active bool, updatedAt time.Time) (*domain.User, error) {
	query := r.DB.rebind(`
		UPDATE users SET active = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns)
	return scanUser(r.DB.QueryRowContext(ctx, query, active, updatedAt.UTC(), id))
}

func scanUser(row scanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	var year sql.NullInt64
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &u.FullName, &role,
		&u.Department, &u.StudentID, &year, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	if year.Valid {
		y := int(year.Int64)
		u.Year = &y
	}
	return u, nil
}
