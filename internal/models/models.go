// Package models defines the core data structures for the coach bot.
//
// It includes domain records (users, goals, check-ins), inbound chat events
// and session state types, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// UserMode represents the interaction mode of a user.
type UserMode string

const (
	// ModeNormal is the default coaching mode.
	ModeNormal UserMode = "normal"
	// ModeCrisis is the low-pressure support mode.
	ModeCrisis UserMode = "crisis"
)

// GoalStatus represents the lifecycle status of a goal.
type GoalStatus string

const (
	// GoalStatusActive marks a goal the user is currently working on.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusArchived marks a goal that is no longer pursued.
	GoalStatusArchived GoalStatus = "archived"
)

// Validation constants for record fields.
const (
	// MaxGoalTitleLength defines the maximum allowed length for goal titles.
	MaxGoalTitleLength = 255
	// MaxReportLength defines the maximum allowed length for check-in reports.
	MaxReportLength = 4096
)

// Error variables for better error handling and testability.
var (
	ErrEmptyChatID      = errors.New("chat id cannot be empty")
	ErrEmptyGoalTitle   = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong = errors.New("goal title exceeds maximum length")
	ErrEmptyReport      = errors.New("check-in report cannot be empty")
	ErrReportTooLong    = errors.New("check-in report exceeds maximum length")
	ErrUserNotFound     = errors.New("user not found")
	ErrGoalNotFound     = errors.New("goal not found or not owned by user")
)

// User represents a registered bot user.
type User struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chat_id"` // transport-level identity (canonical phone number)
	Username      string    `json:"username,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	Mode          UserMode  `json:"mode"`
	ModeUpdatedAt time.Time `json:"mode_updated_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Goal represents a user goal with optional description and mood-board image.
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ImageBase64 string     `json:"image_base64,omitempty"`
	Status      GoalStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks goal fields before persistence.
func (g *Goal) Validate() error {
	if g.Title == "" {
		return ErrEmptyGoalTitle
	}
	if len(g.Title) > MaxGoalTitleLength {
		return ErrGoalTitleTooLong
	}
	return nil
}

// CheckIn represents a progress report against a goal.
type CheckIn struct {
	ID          string    `json:"id"`
	GoalID      string    `json:"goal_id"`
	ReportText  string    `json:"report_text"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	AIFeedback  string    `json:"ai_feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks check-in fields before persistence.
func (c *CheckIn) Validate() error {
	if c.ReportText == "" {
		return ErrEmptyReport
	}
	if len(c.ReportText) > MaxReportLength {
		return ErrReportTooLong
	}
	return nil
}

// BotCommand describes a registrable chat command.
type BotCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
