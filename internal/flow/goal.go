package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
)

const goalSystemPrompt = "Ты — опытный и эмпатичный коуч. Твоя задача — вдохновить пользователя " +
	"и дать 3 первых шага к цели."

// startGoalFlow begins goal creation, discarding any previous flow state.
func (e *Engine) startGoalFlow(ctx context.Context, user *models.User) error {
	sess := models.NewSession(user.ChatID)
	sess.Stage = models.StageGoalTitle
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textGoalAskTitle)
}

// handleGoalTitle stores the title and asks for a description.
func (e *Engine) handleGoalTitle(ctx context.Context, user *models.User, ev models.Event) error {
	title := strings.TrimSpace(ev.Text)
	if title == "" {
		return e.sendText(ctx, user.ChatID, textGoalAskTitle)
	}

	sess := e.sessions.Get(user.ChatID)
	sess.SetScratch(models.ScratchGoalTitle, title)
	sess.Stage = models.StageGoalDescription
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textGoalAskDescription)
}

// handleGoalDescription stores the description and asks for a mood-board
// photo, which can be skipped.
func (e *Engine) handleGoalDescription(ctx context.Context, user *models.User, ev models.Event) error {
	desc := strings.TrimSpace(ev.Text)
	if desc == "" {
		return e.sendText(ctx, user.ChatID, textGoalAskDescription)
	}

	sess := e.sessions.Get(user.ChatID)
	sess.SetScratch(models.ScratchGoalDescription, desc)
	sess.Stage = models.StageGoalPhoto
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textGoalAskPhoto, goalSkipKeyboard()...)
}

// handleGoalPhoto downloads the mood-board photo and finalizes the goal.
// A failed download finalizes without the image rather than losing the goal.
func (e *Engine) handleGoalPhoto(ctx context.Context, user *models.User, ev models.Event) error {
	if ev.Kind != models.EventPhoto {
		return e.sendText(ctx, user.ChatID, textGoalAskPhoto, goalSkipKeyboard()...)
	}

	imageBase64, err := e.msg.FetchImageBase64(ctx, ev.PhotoRef)
	if err != nil {
		if sendErr := e.sendText(ctx, user.ChatID, textGoalPhotoFailed); sendErr != nil {
			return sendErr
		}
		return e.finalizeGoal(ctx, user, "")
	}
	return e.finalizeGoal(ctx, user, imageBase64)
}

// handleSkipCommand skips the photo step; outside the goal flow it is a no-op
// hint.
func (e *Engine) handleSkipCommand(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if sess.Stage != models.StageGoalPhoto {
		return e.sendText(ctx, user.ChatID, textIdleHint)
	}
	return e.finalizeGoal(ctx, user, "")
}

// finalizeGoal persists the goal and sends AI-generated first steps. The
// goal is saved before the AI call so a gateway outage never loses it.
func (e *Engine) finalizeGoal(ctx context.Context, user *models.User, imageBase64 string) error {
	sess := e.sessions.Get(user.ChatID)
	title := sess.GetScratch(models.ScratchGoalTitle)
	description := sess.GetScratch(models.ScratchGoalDescription)

	if title == "" {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textGoalLostTitle)
	}

	goal := models.Goal{
		ID:          util.GenerateGoalID(),
		UserID:      user.ID,
		Title:       title,
		Description: description,
		ImageBase64: imageBase64,
		Status:      models.GoalStatusActive,
		CreatedAt:   time.Now(),
	}
	if err := e.store.CreateGoal(goal); err != nil {
		e.sessions.Clear(user.ChatID)
		return e.sendText(ctx, user.ChatID, textGoalSaveFailed)
	}

	if err := e.sendText(ctx, user.ChatID, textGoalProcessing); err != nil {
		return err
	}

	userText := fmt.Sprintf("Моя цель: %s\nОписание: %s\n\n"+
		"Дай мне мотивирующий пинок и 3 простых шага для начала.",
		title, orDefault(description, "Без описания"))

	userMsg := genai.Message{Role: genai.RoleUser, Content: userText}
	if imageBase64 != "" {
		userMsg.Images = []string{imageBase64}
	}

	response := e.ai.CompleteOrFallback(ctx, []genai.Message{
		{Role: genai.RoleSystem, Content: goalSystemPrompt},
		userMsg,
	}, genai.Options{})

	e.editLast(ctx, user.ChatID, response)
	if err := e.sendText(ctx, user.ChatID, fmt.Sprintf(textGoalSavedFmt, title)); err != nil {
		return err
	}

	e.sessions.Clear(user.ChatID)
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
