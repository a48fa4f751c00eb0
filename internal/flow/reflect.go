package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/content"
	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
)

const reflectSystemPrompt = `Ты — эмпатичный коуч и психолог. Пользователь только что прошёл сессию саморефлексии и ответил на вопросы о своём состоянии.

Твоя задача:
1. Проанализировать ответы и понять эмоциональное состояние человека
2. Выявить ключевой паттерн или блок, который мешает двигаться
3. Дать 2-3 персонализированные рекомендации

Правила:
- Используй тёплый, поддерживающий тон
- Не читай мораль, не давай банальных советов
- Опирайся на конкретные слова пользователя
- Рекомендации должны быть практичными и выполнимыми сегодня
- Длина ответа: 3-5 абзацев максимум
- Используй эмодзи умеренно

Формат ответа:
[Краткий анализ состояния — 1-2 предложения]

[Что я заметил/паттерн — 1-2 предложения]

Мои рекомендации:
1. [Конкретное действие]
2. [Конкретное действие]
3. [Опционально: третья рекомендация]

[Тёплое завершение — 1 предложение]`

// reflectStages and reflectScratchKeys are the question ordering; index i is
// question i+1.
var reflectStages = []models.Stage{
	models.StageReflectQ1,
	models.StageReflectQ2,
	models.StageReflectQ3,
	models.StageReflectQ4,
	models.StageReflectQ5,
	models.StageReflectQ6,
	models.StageReflectQ7,
}

var reflectScratchKeys = []models.ScratchKey{
	models.ScratchReflectQ1,
	models.ScratchReflectQ2,
	models.ScratchReflectQ3,
	models.ScratchReflectQ4,
	models.ScratchReflectQ5,
	models.ScratchReflectQ6,
	models.ScratchReflectQ7,
}

func reflectQuestionIndex(stage models.Stage) int {
	for i, s := range reflectStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// startReflectFlow opens a reflection session and asks the first question.
func (e *Engine) startReflectFlow(ctx context.Context, user *models.User) error {
	sess := models.NewSession(user.ChatID)
	sess.Stage = models.StageReflectQ1
	e.sessions.Set(sess)

	if err := e.sendText(ctx, user.ChatID, textReflectIntro); err != nil {
		return err
	}
	return e.sendText(ctx, user.ChatID, reflectQuestions[0], reflectSkipKeyboard()...)
}

// handleReflectAnswer records the answer for the current question and moves
// on; the last answer triggers the AI analysis.
func (e *Engine) handleReflectAnswer(ctx context.Context, user *models.User, ev models.Event) error {
	answer := strings.TrimSpace(ev.Text)
	if answer == "" {
		answer = models.SkippedAnswer
	}
	return e.advanceReflect(ctx, user, answer)
}

// handleReflectSkip records the skip sentinel for the current question.
func (e *Engine) handleReflectSkip(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if reflectQuestionIndex(sess.Stage) < 0 {
		return nil
	}
	return e.advanceReflect(ctx, user, models.SkippedAnswer)
}

// handleReflectCancel aborts the session, discarding all answers.
func (e *Engine) handleReflectCancel(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if sess.Stage.Flow() != models.FlowReflect {
		return nil
	}
	e.sessions.Clear(user.ChatID)
	e.editLast(ctx, user.ChatID, textReflectCancelled)
	return nil
}

// advanceReflect stores the answer for the current question and either asks
// the next one or runs the analysis after the last.
func (e *Engine) advanceReflect(ctx context.Context, user *models.User, answer string) error {
	sess := e.sessions.Get(user.ChatID)
	idx := reflectQuestionIndex(sess.Stage)
	if idx < 0 {
		return nil
	}

	sess.SetScratch(reflectScratchKeys[idx], answer)

	if idx == len(reflectStages)-1 {
		sess.Stage = models.StageReflectProcessing
		e.sessions.Set(sess)
		return e.runReflectAnalysis(ctx, user)
	}

	sess.Stage = reflectStages[idx+1]
	e.sessions.Set(sess)
	return e.sendText(ctx, user.ChatID, reflectQuestions[idx+1], reflectSkipKeyboard()...)
}

// formatReflectAnswers renders the collected answers for the AI prompt.
// Unanswered questions carry the skip sentinel.
func formatReflectAnswers(sess models.Session) string {
	lines := make([]string, 0, len(reflectScratchKeys))
	for i, key := range reflectScratchKeys {
		answer := sess.GetScratch(key)
		if answer == "" {
			answer = models.SkippedAnswer
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", reflectAnswerLabels[i], answer))
	}
	return strings.Join(lines, "\n")
}

// runReflectAnalysis sends the answers to the AI and presents the result
// with the post-session actions. The session ends in the post-reflect stage
// whether or not the AI succeeded.
func (e *Engine) runReflectAnalysis(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)

	mantra := content.RandomMantra(content.MantraReflect)
	if err := e.sendText(ctx, user.ChatID, fmt.Sprintf(textReflectProcessingFmt, mantra)); err != nil {
		return err
	}

	userContent := "Ответы пользователя на вопросы рефлексии:\n\n" + formatReflectAnswers(sess)
	response, err := e.ai.Complete(ctx, []genai.Message{
		{Role: genai.RoleSystem, Content: reflectSystemPrompt},
		{Role: genai.RoleUser, Content: userContent},
	}, genai.Options{Temperature: 0.7, MaxTokens: 800})

	result := textReflectAIFailed
	if err == nil {
		result = fmt.Sprintf(textReflectResultFmt, response)
	}
	if sendErr := e.sendText(ctx, user.ChatID, result, postReflectKeyboard()...); sendErr != nil {
		return sendErr
	}

	sess.Stage = models.StageReflectPost
	e.sessions.Set(sess)
	return nil
}

// handleReflectBreathe offers the breathing technique choice after a
// reflection session.
func (e *Engine) handleReflectBreathe(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if sess.Stage != models.StageReflectPost {
		return nil
	}
	return e.sendText(ctx, user.ChatID, textBreathingChoose, breathingChoiceKeyboard()...)
}

// handleReflectSaveStep turns the "one step" answer into an active goal so
// it survives the ephemeral session.
func (e *Engine) handleReflectSaveStep(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if sess.Stage != models.StageReflectPost {
		return nil
	}

	step := sess.GetScratch(models.ScratchReflectQ7)
	e.sessions.Clear(user.ChatID)

	if step == "" || step == models.SkippedAnswer {
		return e.sendText(ctx, user.ChatID, textReflectStepEmpty, backToMenuKeyboard()...)
	}

	goal := models.Goal{
		ID:        util.GenerateGoalID(),
		UserID:    user.ID,
		Title:     step,
		Status:    models.GoalStatusActive,
		CreatedAt: time.Now(),
	}
	if err := e.store.CreateGoal(goal); err != nil {
		return e.sendText(ctx, user.ChatID, textGoalSaveFailed)
	}

	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textReflectStepFmt, step), backToMenuKeyboard()...)
}

// handleReflectDone closes the session.
func (e *Engine) handleReflectDone(ctx context.Context, user *models.User) error {
	sess := e.sessions.Get(user.ChatID)
	if sess.Stage != models.StageReflectPost {
		return nil
	}

	e.sessions.Clear(user.ChatID)
	mantra := content.RandomMantra(content.MantraExit)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textReflectDoneFmt, mantra), backToMenuKeyboard()...)
}
