// Package store provides storage backends for the coach bot.
//
// This file implements a PostgreSQL-backed store for users, goals and check-ins.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetUserByChatID retrieves a user by transport identity.
func (s *PostgresStore) GetUserByChatID(chatID string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT id, chat_id, username, first_name, mode, mode_updated_at, created_at FROM users WHERE chat_id = $1`, chatID)
	var u models.User
	err := row.Scan(&u.ID, &u.ChatID, &u.Username, &u.FirstName, &u.Mode, &u.ModeUpdatedAt, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetUserByChatID failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to query user by chat id: %w", err)
	}
	return &u, nil
}

// CreateUser persists a new user record.
func (s *PostgresStore) CreateUser(u models.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id, chat_id, username, first_name, mode, mode_updated_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.ChatID, u.Username, u.FirstName, u.Mode, u.ModeUpdatedAt, u.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore CreateUser failed", "error", err, "chatID", u.ChatID)
		return fmt.Errorf("failed to insert user %s: %w", u.ChatID, err)
	}
	return nil
}

// SaveUser updates an existing user record.
func (s *PostgresStore) SaveUser(u models.User) error {
	res, err := s.db.Exec(`UPDATE users SET username = $1, first_name = $2, mode = $3, mode_updated_at = $4 WHERE id = $5`,
		u.Username, u.FirstName, u.Mode, u.ModeUpdatedAt, u.ID)
	if err != nil {
		slog.Error("PostgresStore SaveUser failed", "error", err, "userID", u.ID)
		return fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// CreateGoal persists a new goal record.
func (s *PostgresStore) CreateGoal(g models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO goals (id, user_id, title, description, image_base64, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.UserID, g.Title, g.Description, g.ImageBase64, g.Status, g.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore CreateGoal failed", "error", err, "userID", g.UserID)
		return fmt.Errorf("failed to insert goal for %s: %w", g.UserID, err)
	}
	return nil
}

// ListGoals returns the user's goals with the given status, oldest first.
func (s *PostgresStore) ListGoals(userID string, status models.GoalStatus) ([]models.Goal, error) {
	rows, err := s.db.Query(`SELECT id, user_id, title, description, image_base64, status, created_at FROM goals WHERE user_id = $1 AND status = $2 ORDER BY created_at`, userID, status)
	if err != nil {
		slog.Error("PostgresStore ListGoals query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.ImageBase64, &g.Status, &g.CreatedAt); err != nil {
			slog.Error("PostgresStore ListGoals scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goal rows: %w", err)
	}
	return goals, nil
}

// GetGoalOwnedBy retrieves a goal only if it belongs to the given user.
func (s *PostgresStore) GetGoalOwnedBy(goalID, userID string) (*models.Goal, error) {
	row := s.db.QueryRow(`SELECT id, user_id, title, description, image_base64, status, created_at FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	var g models.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.ImageBase64, &g.Status, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetGoalOwnedBy failed", "error", err, "goalID", goalID)
		return nil, fmt.Errorf("failed to query goal %s: %w", goalID, err)
	}
	return &g, nil
}

// CreateCheckIn persists a new check-in record.
func (s *PostgresStore) CreateCheckIn(c models.CheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO checkins (id, goal_id, report_text, image_base64, ai_feedback, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.GoalID, c.ReportText, c.ImageBase64, c.AIFeedback, c.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore CreateCheckIn failed", "error", err, "goalID", c.GoalID)
		return fmt.Errorf("failed to insert check-in for goal %s: %w", c.GoalID, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
