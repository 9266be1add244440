package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"heatzone"
)

// UserRepository stores the API users. Usernames are case-insensitive:
// they are folded to lower case on write, so "Alice" and "alice" name
// the same account and the UNIQUE constraint catches both.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*UserRepository)(nil)

const (
	insertUserSQL           = `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	selectUserByUsernameSQL = `SELECT id, username, password_hash FROM users WHERE username = ?`
)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(username, passwordHash string) (int, error) {
	name := normalizeUsername(username)
	if name == "" {
		return 0, errors.New("username is empty")
	}

	res, err := r.db.Exec(insertUserSQL, name, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", name, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", name, err)
	}
	return int(lastID), nil
}

// GetByUsername fetches a user, folding the lookup the same way Create
// folds the stored name. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(username string) (*heatzone.User, error) {
	name := normalizeUsername(username)

	var u heatzone.User
	err := r.db.QueryRow(selectUserByUsernameSQL, name).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", name, err)
	}
	return &u, nil
}
