package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
)

// handleStart greets the user. New users get onboarding; returning users get
// the main menu with any stale flow state cleared.
func (e *Engine) handleStart(ctx context.Context, ev models.Event) error {
	user, err := e.store.GetUserByChatID(ev.From)
	if err != nil {
		return err
	}

	if user == nil {
		now := time.Now()
		newUser := models.User{
			ID:            util.GenerateUserID(),
			ChatID:        ev.From,
			Mode:          models.ModeNormal,
			ModeUpdatedAt: now,
			CreatedAt:     now,
		}
		if err := e.store.CreateUser(newUser); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		sess := models.NewSession(ev.From)
		sess.Stage = models.StageOnboardingName
		e.sessions.Set(sess)

		return e.sendText(ctx, ev.From, fmt.Sprintf(textGreetNewFmt, fallbackName))
	}

	e.sessions.Clear(ev.From)

	name := user.FirstName
	if name == "" {
		name = fallbackName
	}
	if err := e.sendText(ctx, ev.From, fmt.Sprintf(textGreetReturningFmt, name)); err != nil {
		return err
	}
	return e.showMenu(ctx, user)
}

// handleOnboardingName stores the user's preferred name and asks for the
// main goal.
func (e *Engine) handleOnboardingName(ctx context.Context, user *models.User, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.sendText(ctx, ev.From, fmt.Sprintf(textGreetNewFmt, fallbackName))
	}

	if user == nil {
		// The record should exist from /start; recreate defensively.
		now := time.Now()
		created := models.User{
			ID:            util.GenerateUserID(),
			ChatID:        ev.From,
			FirstName:     name,
			Mode:          models.ModeNormal,
			ModeUpdatedAt: now,
			CreatedAt:     now,
		}
		if err := e.store.CreateUser(created); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		user.FirstName = name
		if err := e.store.SaveUser(*user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
	}

	sess := e.sessions.Get(ev.From)
	sess.Stage = models.StageOnboardingMainGoal
	e.sessions.Set(sess)

	return e.sendText(ctx, ev.From, fmt.Sprintf(textOnboardingNameFmt, name))
}

// handleOnboardingMainGoal creates the user's first goal from free text and
// finishes onboarding.
func (e *Engine) handleOnboardingMainGoal(ctx context.Context, user *models.User, ev models.Event) error {
	if user == nil {
		e.sessions.Clear(ev.From)
		return e.sendText(ctx, ev.From, textNeedStart)
	}

	title := strings.TrimSpace(ev.Text)
	goal := models.Goal{
		ID:          util.GenerateGoalID(),
		UserID:      user.ID,
		Title:       title,
		Description: fmt.Sprintf(textOnboardingMainGoalDescFmt, title),
		Status:      models.GoalStatusActive,
		CreatedAt:   time.Now(),
	}
	if err := goal.Validate(); err != nil {
		return e.sendText(ctx, ev.From, fmt.Sprintf(textOnboardingNameFmt, user.FirstName))
	}
	if err := e.store.CreateGoal(goal); err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	e.sessions.Clear(ev.From)
	return e.sendText(ctx, ev.From, textOnboardingDone)
}

// showMenu sends the main menu, clearing any active flow.
func (e *Engine) showMenu(ctx context.Context, user *models.User) error {
	e.sessions.Clear(user.ChatID)

	goals, err := e.store.ListGoals(user.ID, models.GoalStatusActive)
	if err != nil {
		return err
	}

	name := user.FirstName
	if name == "" {
		name = fallbackName
	}
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textMenuFmt, name), menuKeyboard(len(goals) > 0)...)
}

// showMenuEdit returns to the menu from a button press, replacing the
// previous message when the transport can.
func (e *Engine) showMenuEdit(ctx context.Context, user *models.User) error {
	e.editLast(ctx, user.ChatID, textIdleHint)
	return e.showMenu(ctx, user)
}
