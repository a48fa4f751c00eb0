// Package store provides storage backends for the coach bot.
//
// It includes an in-memory store used by default and in tests, plus
// SQLite and PostgreSQL backed implementations selected by DSN.
package store

import (
	"strings"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

// Store defines the persistence contract consumed by the flow engine.
// Lookup methods return (nil, nil) when no matching record exists.
type Store interface {
	// GetUserByChatID retrieves a user by transport identity.
	GetUserByChatID(chatID string) (*models.User, error)

	// CreateUser persists a new user record.
	CreateUser(u models.User) error

	// SaveUser updates an existing user record.
	SaveUser(u models.User) error

	// CreateGoal persists a new goal record.
	CreateGoal(g models.Goal) error

	// ListGoals returns the user's goals with the given status, oldest first.
	ListGoals(userID string, status models.GoalStatus) ([]models.Goal, error)

	// GetGoalOwnedBy retrieves a goal only if it belongs to the given user.
	GetGoalOwnedBy(goalID, userID string) (*models.Goal, error)

	// CreateCheckIn persists a new check-in record.
	CreateCheckIn(c models.CheckIn) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
