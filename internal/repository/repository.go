package repository

import (
	"context"
	"database/sql"
	"time"

	"heatzone"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*heatzone.User, error)
}

type EventRepo interface {
	Append(ctx context.Context, e heatzone.ProfileEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]heatzone.ProfileEvent, error)
}

type Repository struct {
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
