package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingme/pingme/internal/model"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewWithDB(mock)
}

func TestCreateUser(t *testing.T) {
	now := time.Now().UTC()
	user := &model.User{
		ID:           "01HUSER0000000000000000000",
		Username:     "a",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID, user.Username, user.Email, user.PasswordHash, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID, user.Username, user.Email, user.PasswordHash, now).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			tt.setupMock(mock)

			err := repo.CreateUser(context.Background(), user)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	now := time.Now().UTC()
	columns := []string{"id", "username", "email", "password_hash", "created_at"}

	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at\s+FROM users`).
			WithArgs("a@x.com").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("u1", "a", "a@x.com", "$2a$10$hash", now))

		user, err := repo.GetUserByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at\s+FROM users`).
			WithArgs("missing@x.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetUserByEmail(context.Background(), "missing@x.com")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at\s+FROM users`).
			WithArgs("a@x.com").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetUserByEmail(context.Background(), "a@x.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateUserPassword(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs("u1", "$2a$10$newhash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateUserPassword(context.Background(), "u1", "$2a$10$newhash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs("missing", "$2a$10$newhash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateUserPassword(context.Background(), "missing", "$2a$10$newhash")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
