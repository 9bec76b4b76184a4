package repository

import (
	"context"
	"database/sql"
	"time"

	"beehive_monitor/internal/models"
)

// Users stores dashboard accounts.
type Users interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Events is the append-only hive event log.
type Events interface {
	Append(ctx context.Context, e models.HiveEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.HiveEvent, error)
}

type Repository struct {
	Events Events
	Users  Users
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Events: NewEventSQLite(db),
		Users:  NewUserRepository(db),
	}
}
