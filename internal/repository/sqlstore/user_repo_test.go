package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "salt", "full_name", "role", "department", "student_id", "year", "active", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hash", "salt", "Alice", "STUDENT", "", "", sql.NullInt64{}, true, now, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate username",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "users_username_key"`})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "users_email_key"`})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(New(db, PostgresDialect()))
			u := domain.NewUser("alice", "alice@example.com", "Alice", now, now)
			u.PasswordHash = "hash"
			u.Salt = "salt"
			err = repo.Create(ctx, u)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				require.Empty(t, u.ID)
			} else {
				require.NoError(t, err)
				require.NotEmpty(t, u.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(userRowColumns).
			AddRow("user-1", "alice", "alice@example.com", "hash", "salt", "Alice", "ADMIN", "CS", "S1", int64(2), true, now, now)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).WithArgs("alice").WillReturnRows(rows)

		u, err := NewUserRepository(New(db, PostgresDialect())).GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)
		require.Equal(t, domain.RoleAdmin, u.Role)
		require.NotNil(t, u.Year)
		require.Equal(t, 2, *u.Year)
		require.True(t, u.Active)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err = NewUserRepository(New(db, PostgresDialect())).GetByUsername(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := NewUserRepository(New(db, PostgresDialect())).ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(userRowColumns).
			AddRow("user-1", "alice", "alice@example.com", "hash", "salt", "Alice", "ADMIN", "", "", nil, true, now, now)
		mock.ExpectQuery(`UPDATE users SET role = \$1, updated_at = \$2`).
			WithArgs("ADMIN", now, "user-1").
			WillReturnRows(rows)

		u, err := NewUserRepository(New(db, PostgresDialect())).UpdateRole(ctx, "user-1", domain.RoleAdmin, now)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, u.Role)
		require.Nil(t, u.Year)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE users SET role`).
			WithArgs("ADMIN", now, "missing").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err = NewUserRepository(New(db, PostgresDialect())).UpdateRole(ctx, "missing", domain.RoleAdmin, now)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
