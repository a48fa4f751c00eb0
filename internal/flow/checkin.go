package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
)

const checkinSystemPrompt = "Ты - опытный коуч по достижению целей. Твоя задача - поддержать " +
	"пользователя и дать конструктивный совет на основе его отчета."

const checkinInstruction = "Проанализируй прогресс. Дай краткую обратную связь: " +
	"1. Похвали за сделанное.\n" +
	"2. Дай 1 конкретный совет, что можно улучшить или сделать следующим шагом.\n" +
	"Ответ должен быть мотивирующим, но кратким (до 100 слов)."

// checkinFallbackFeedback replaces AI feedback when the gateway stays down.
// The check-in record is persisted either way.
const checkinFallbackFeedback = "Отличная работа! Продолжай в том же духе. " +
	"(AI временно недоступен для детального анализа)"

// startCheckinFlow lists the user's active goals for selection. Without
// active goals the flow is never entered.
func (e *Engine) startCheckinFlow(ctx context.Context, user *models.User) error {
	goals, err := e.store.ListGoals(user.ID, models.GoalStatusActive)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		return e.sendText(ctx, user.ChatID, textCheckinNoGoals)
	}

	sess := models.NewSession(user.ChatID)
	sess.Stage = models.StageCheckinSelection
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textCheckinPickGoal, checkinGoalsKeyboard(goals)...)
}

// repromptCheckinSelection answers free text during goal selection. The goal
// keyboard is sent again: transports remember only the latest option set, so
// a buttonless nudge would leave the user with nothing to press.
func (e *Engine) repromptCheckinSelection(ctx context.Context, user *models.User) error {
	goals, err := e.store.ListGoals(user.ID, models.GoalStatusActive)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textCheckinNoGoals)
	}
	return e.sendText(ctx, user.ChatID, textCheckinPickButton, checkinGoalsKeyboard(goals)...)
}

// handleCheckinSelection verifies the selected goal belongs to the user
// before transitioning. A foreign or unknown goal id clears the session and
// re-prompts instead of transitioning. A stale selection button pressed
// outside the selection stage is a no-op so it cannot hijack another flow.
func (e *Engine) handleCheckinSelection(ctx context.Context, user *models.User, goalID string) error {
	if e.sessions.Get(user.ChatID).Stage != models.StageCheckinSelection {
		return nil
	}

	goal, err := e.store.GetGoalOwnedBy(goalID, user.ID)
	if err != nil {
		return err
	}
	if goal == nil {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textCheckinBadGoal)
	}

	sess := e.sessions.Get(user.ChatID)
	sess.SetScratch(models.ScratchCheckinGoalID, goal.ID)
	sess.Stage = models.StageCheckinReport
	e.sessions.Set(sess)

	e.editLast(ctx, user.ChatID, fmt.Sprintf(textCheckinAskReportFmt, goal.Title))
	return nil
}

// handleCheckinReport accepts a text or photo report, persists the check-in
// and replies with AI feedback. A photo download failure re-prompts without
// leaving the stage.
func (e *Engine) handleCheckinReport(ctx context.Context, user *models.User, ev models.Event) error {
	sess := e.sessions.Get(user.ChatID)
	goalID := sess.GetScratch(models.ScratchCheckinGoalID)
	if goalID == "" {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textCheckinLostGoal)
	}

	goal, err := e.store.GetGoalOwnedBy(goalID, user.ID)
	if err != nil {
		return err
	}
	if goal == nil {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textCheckinBadGoal)
	}

	var reportText, imageBase64 string
	switch ev.Kind {
	case models.EventPhoto:
		imageBase64, err = e.msg.FetchImageBase64(ctx, ev.PhotoRef)
		if err != nil {
			return e.sendText(ctx, user.ChatID, textCheckinPhotoFailed)
		}
		reportText = orDefault(ev.Caption, textCheckinPhotoCaption)
	default:
		reportText = ev.Text
		if reportText == "" {
			return e.sendText(ctx, user.ChatID, fmt.Sprintf(textCheckinAskReportFmt, goal.Title))
		}
	}

	if err := e.sendText(ctx, user.ChatID, textCheckinProcessing); err != nil {
		return err
	}

	userContent := fmt.Sprintf("Цель: %s\nОписание цели: %s\n\nОтчет пользователя: %s",
		goal.Title, goal.Description, reportText)
	userMsg := genai.Message{Role: genai.RoleUser, Content: userContent}
	if imageBase64 != "" {
		userMsg.Images = []string{imageBase64}
	}

	feedback, aiErr := e.ai.Complete(ctx, []genai.Message{
		{Role: genai.RoleSystem, Content: checkinSystemPrompt},
		userMsg,
		{Role: genai.RoleUser, Content: checkinInstruction},
	}, genai.Options{})
	if aiErr != nil {
		feedback = checkinFallbackFeedback
	}

	checkin := models.CheckIn{
		ID:          util.GenerateCheckInID(),
		GoalID:      goal.ID,
		ReportText:  reportText,
		ImageBase64: imageBase64,
		AIFeedback:  feedback,
		CreatedAt:   time.Now(),
	}
	if err := e.store.CreateCheckIn(checkin); err != nil {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textCheckinSaveFailed)
	}

	if err := e.sendText(ctx, user.ChatID, fmt.Sprintf(textCheckinSavedFmt, feedback), backToMenuKeyboard()...); err != nil {
		return err
	}

	e.sessions.Clear(user.ChatID)
	return nil
}
