package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewUserRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		passwordHash string
		mockExpect   func(sqlmock.Sqlmock)
		wantID       int
		wantErr      bool
	}{
		{
			name:         "success",
			username:     "alice",
			passwordHash: "h123",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "h123").
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name:         "username folded to lower case",
			username:     "  Alice ",
			passwordHash: "h123",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "h123").
					WillReturnResult(sqlmock.NewResult(43, 1))
			},
			wantID: 43,
		},
		{
			name:         "blank username rejected before the insert",
			username:     "   ",
			passwordHash: "h123",
			mockExpect:   func(m sqlmock.Sqlmock) {},
			wantErr:      true,
		},
		{
			name:         "exec error",
			username:     "bob",
			passwordHash: "h456",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("bob", "h456").
					WillReturnError(errors.New("unique constraint"))
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tc.mockExpect(mock)

			id, err := repo.Create(tc.username, tc.passwordHash)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if id != tc.wantID {
				t.Fatalf("Create() id = %d, want %d", id, tc.wantID)
			}
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(7, "alice", "h123")
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnRows(rows)

		u, err := repo.GetByUsername("alice")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if u == nil || u.ID != 7 || u.Username != "alice" || u.PasswordHash != "h123" {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(7, "alice", "h123")
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnRows(rows)

		u, err := repo.GetByUsername("ALICE")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if u == nil || u.ID != 7 {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.GetByUsername("ghost")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if u != nil {
			t.Fatalf("expected nil user, got %+v", u)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
			WithArgs("alice").
			WillReturnError(sql.ErrConnDone)

		if _, err := repo.GetByUsername("alice"); err == nil {
			t.Fatalf("expected error")
		}
	})
}
