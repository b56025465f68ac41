package db

import (
	"database/sql"
)

// Database is a local store holding browser-independent client state (sessions, preferences).
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
