package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/content"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/mood"
)

// exitCrisisContext is handed to the mood selector when the user confirms
// leaving crisis mode.
const exitCrisisContext = "Пользователь выходит из режима кризиса, чувствует себя лучше, мотивация"

// enterCrisis switches the user into crisis mode and shows the support menu.
// Entry supersedes any active flow.
func (e *Engine) enterCrisis(ctx context.Context, user *models.User) error {
	user.Mode = models.ModeCrisis
	user.ModeUpdatedAt = time.Now()
	if err := e.store.SaveUser(*user); err != nil {
		return fmt.Errorf("failed to save user mode: %w", err)
	}

	sess := models.NewSession(user.ChatID)
	sess.Stage = models.StageCrisisFeeling
	e.sessions.Set(sess)

	e.sendAnimation(ctx, user.ChatID, string(mood.CategorySupport))
	return e.sendText(ctx, user.ChatID, textCrisisEnter, crisisMenuKeyboard()...)
}

// requireCrisis guards crisis sub-actions on the persisted mode, not the
// session stage: mode survives restarts, the in-memory stage does not.
func (e *Engine) requireCrisis(ctx context.Context, user *models.User) (bool, error) {
	if user.Mode != models.ModeCrisis {
		return false, e.sendText(ctx, user.ChatID, textCrisisGuard)
	}
	return true, nil
}

// handleCrisisFeelingText accepts whatever the user shared without analysis
// and redisplays the crisis menu.
func (e *Engine) handleCrisisFeelingText(ctx context.Context, user *models.User, ev models.Event) error {
	mantra := content.RandomMantra(content.MantraCrisis)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisFeelingFmt, mantra), crisisMenuKeyboard()...)
}

// handleCrisisTalk invites the user to write what they feel.
func (e *Engine) handleCrisisTalk(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisFeeling
	e.sessions.Set(sess)

	e.editLast(ctx, user.ChatID, textCrisisTalk)
	return nil
}

// handleCrisisJustBe moves to the quiet idle state.
func (e *Engine) handleCrisisJustBe(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisJustBeing
	e.sessions.Set(sess)

	e.sendAnimation(ctx, user.ChatID, string(mood.CategoryRest))
	mantra := content.RandomMantra(content.MantraCrisis)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisJustBeFmt, mantra))
}

// handleCrisisJustBeingText gently acknowledges messages in the "just being"
// state without leaving it.
func (e *Engine) handleCrisisJustBeingText(ctx context.Context, user *models.User) error {
	mantra := content.RandomMantra(content.MantraCrisis)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisJustBeingFmt, mantra), crisisMenuKeyboard()...)
}

// handleCrisisMicro offers one small action, linked to the user's first
// active goal when one exists.
func (e *Engine) handleCrisisMicro(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisMicroAction
	e.sessions.Set(sess)

	text := textCrisisMicroNoGoal
	if goal := e.firstActiveGoal(user); goal != nil {
		text = fmt.Sprintf(textCrisisMicroGoalFmt, goal.Title)
	}
	return e.sendText(ctx, user.ChatID, text, microActionKeyboard()...)
}

// handleCrisisMicroActionText nudges back to the try/skip choice when the
// user types instead of pressing a button.
func (e *Engine) handleCrisisMicroActionText(ctx context.Context, user *models.User) error {
	text := textCrisisMicroNudge
	if goal := e.firstActiveGoal(user); goal != nil {
		text = fmt.Sprintf(textCrisisMicroNudgeGoalFmt, goal.Title)
	}
	return e.sendText(ctx, user.ChatID, text, microActionKeyboard()...)
}

// handleCrisisMicroTry waits for the user to report their small action.
func (e *Engine) handleCrisisMicroTry(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisMicroReport
	e.sessions.Set(sess)

	e.editLast(ctx, user.ChatID, textCrisisMicroTry)
	return nil
}

// handleCrisisMicroSkip accepts declining the action without pressure.
func (e *Engine) handleCrisisMicroSkip(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisJustBeing
	e.sessions.Set(sess)

	e.sendAnimation(ctx, user.ChatID, string(mood.CategoryRest))
	mantra := content.RandomMantra(content.MantraCrisis)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisMicroSkipFmt, mantra))
}

// handleCrisisMicroReport celebrates any reported progress and returns to
// the crisis hub.
func (e *Engine) handleCrisisMicroReport(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisFeeling
	e.sessions.Set(sess)

	e.sendAnimation(ctx, user.ChatID, string(mood.CategoryCelebration))
	mantra := content.RandomMantra(content.MantraMicroAction)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisMicroReportFmt, mantra), crisisMenuKeyboard()...)
}

// handleNormalCommand asks for confirmation before leaving crisis mode.
func (e *Engine) handleNormalCommand(ctx context.Context, user *models.User) error {
	if user.Mode != models.ModeCrisis {
		return e.sendText(ctx, user.ChatID, textCrisisAlreadyNorm)
	}
	return e.sendText(ctx, user.ChatID, textCrisisExitAsk, exitCrisisKeyboard()...)
}

// handleCrisisExitYes switches the user back to normal mode and sends a
// mood-matched animation picked by the selector.
func (e *Engine) handleCrisisExitYes(ctx context.Context, user *models.User) error {
	user.Mode = models.ModeNormal
	user.ModeUpdatedAt = time.Now()
	if err := e.store.SaveUser(*user); err != nil {
		return fmt.Errorf("failed to save user mode: %w", err)
	}

	e.sessions.Clear(user.ChatID)

	mantra := content.RandomMantra(content.MantraExit)
	if err := e.sendText(ctx, user.ChatID, fmt.Sprintf(textCrisisExitYesFmt, mantra)); err != nil {
		return err
	}

	category := e.mood.Classify(ctx, exitCrisisContext, "")
	e.sendAnimation(ctx, user.ChatID, string(category))
	return nil
}

// handleCrisisExitNo keeps the user in crisis mode.
func (e *Engine) handleCrisisExitNo(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisFeeling
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textCrisisExitNo, crisisMenuKeyboard()...)
}

// firstActiveGoal returns the user's oldest active goal, or nil.
func (e *Engine) firstActiveGoal(user *models.User) *models.Goal {
	goals, err := e.store.ListGoals(user.ID, models.GoalStatusActive)
	if err != nil || len(goals) == 0 {
		return nil
	}
	return &goals[0]
}
