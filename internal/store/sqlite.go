// Package store provides storage backends for the coach bot.
//
// This file implements an SQLite-backed store for users, goals and check-ins.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a Store backed by an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetUserByChatID retrieves a user by transport identity.
func (s *SQLiteStore) GetUserByChatID(chatID string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT id, chat_id, username, first_name, mode, mode_updated_at, created_at FROM users WHERE chat_id = ?`, chatID)
	var u models.User
	err := row.Scan(&u.ID, &u.ChatID, &u.Username, &u.FirstName, &u.Mode, &u.ModeUpdatedAt, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetUserByChatID failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to query user by chat id: %w", err)
	}
	return &u, nil
}

// CreateUser persists a new user record.
func (s *SQLiteStore) CreateUser(u models.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id, chat_id, username, first_name, mode, mode_updated_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.ChatID, u.Username, u.FirstName, u.Mode, u.ModeUpdatedAt, u.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateUser failed", "error", err, "chatID", u.ChatID)
		return fmt.Errorf("failed to insert user %s: %w", u.ChatID, err)
	}
	slog.Debug("SQLiteStore CreateUser succeeded", "userID", u.ID)
	return nil
}

// SaveUser updates an existing user record.
func (s *SQLiteStore) SaveUser(u models.User) error {
	res, err := s.db.Exec(`UPDATE users SET username = ?, first_name = ?, mode = ?, mode_updated_at = ? WHERE id = ?`,
		u.Username, u.FirstName, u.Mode, u.ModeUpdatedAt, u.ID)
	if err != nil {
		slog.Error("SQLiteStore SaveUser failed", "error", err, "userID", u.ID)
		return fmt.Errorf("failed to update user %s: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// CreateGoal persists a new goal record.
func (s *SQLiteStore) CreateGoal(g models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO goals (id, user_id, title, description, image_base64, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.Description, g.ImageBase64, g.Status, g.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateGoal failed", "error", err, "userID", g.UserID)
		return fmt.Errorf("failed to insert goal for %s: %w", g.UserID, err)
	}
	slog.Debug("SQLiteStore CreateGoal succeeded", "goalID", g.ID)
	return nil
}

// ListGoals returns the user's goals with the given status, oldest first.
func (s *SQLiteStore) ListGoals(userID string, status models.GoalStatus) ([]models.Goal, error) {
	rows, err := s.db.Query(`SELECT id, user_id, title, description, image_base64, status, created_at FROM goals WHERE user_id = ? AND status = ? ORDER BY created_at`, userID, status)
	if err != nil {
		slog.Error("SQLiteStore ListGoals query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.ImageBase64, &g.Status, &g.CreatedAt); err != nil {
			slog.Error("SQLiteStore ListGoals scan failed", "error", err)
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
func (s *SQLiteStore) GetGoalOwnedBy(goalID, userID string) (*models.Goal, error) {
	row := s.db.QueryRow(`SELECT id, user_id, title, description, image_base64, status, created_at FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	var g models.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.ImageBase64, &g.Status, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetGoalOwnedBy failed", "error", err, "goalID", goalID)
		return nil, fmt.Errorf("failed to query goal %s: %w", goalID, err)
	}
	return &g, nil
}

// CreateCheckIn persists a new check-in record.
func (s *SQLiteStore) CreateCheckIn(c models.CheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO checkins (id, goal_id, report_text, image_base64, ai_feedback, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.GoalID, c.ReportText, c.ImageBase64, c.AIFeedback, c.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateCheckIn failed", "error", err, "goalID", c.GoalID)
		return fmt.Errorf("failed to insert check-in for goal %s: %w", c.GoalID, err)
	}
	slog.Debug("SQLiteStore CreateCheckIn succeeded", "checkinID", c.ID)
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
