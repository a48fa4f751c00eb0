// Package flow implements the conversation state machines of the coach bot:
// onboarding, goal setting, check-ins, reflection sessions and the crisis
// support mode.
//
// The engine is transport-agnostic. It consumes normalized events and talks
// back through the Messenger interface; the messaging layer guarantees that
// events for one user are delivered sequentially, so handlers may block (the
// breathing sub-flow does) without stalling other users.
package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/content"
	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/mood"
	"github.com/RomaniumSSS/My-first-project/internal/store"
)

// Messenger defines the outbound operations the engine needs from a
// transport. Implementations live in the messaging layer.
type Messenger interface {
	// SendText delivers a text message, optionally with inline buttons.
	SendText(ctx context.Context, to, text string, buttons ...models.Button) error

	// SendAnimation delivers an animation by catalogue reference with an
	// optional caption.
	SendAnimation(ctx context.Context, to, ref, caption string) error

	// EditLast replaces the text of the most recent bot message to the
	// recipient. Best effort: transports that cannot edit send a new message.
	EditLast(ctx context.Context, to, text string) error

	// FetchImageBase64 downloads the media behind an opaque photo reference
	// and returns it base64-encoded.
	FetchImageBase64(ctx context.Context, ref string) (string, error)
}

// SleepFunc pauses for the given duration, honoring context cancellation.
// Injected so breathing pacing is testable without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config carries the engine dependencies.
type Config struct {
	Store      store.Store
	AI         genai.ClientInterface
	Messenger  Messenger
	Mood       *mood.Selector
	Animations *content.AnimationLibrary
	Sessions   *SessionStore
	Sleep      SleepFunc
}

// Engine routes inbound events through the conversation state machines.
type Engine struct {
	store    store.Store
	ai       genai.ClientInterface
	msg      Messenger
	mood     *mood.Selector
	anims    *content.AnimationLibrary
	sessions *SessionStore
	sleep    SleepFunc
}

// NewEngine creates a flow engine. Sessions, animations, sleep and the mood
// selector get working defaults when omitted.
func NewEngine(cfg Config) *Engine {
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessionStore()
	}
	if cfg.Animations == nil {
		cfg.Animations = content.NewAnimationLibrary()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = defaultSleep
	}
	if cfg.Mood == nil {
		cfg.Mood = mood.NewSelector(cfg.AI)
	}
	return &Engine{
		store:    cfg.Store,
		ai:       cfg.AI,
		msg:      cfg.Messenger,
		mood:     cfg.Mood,
		anims:    cfg.Animations,
		sessions: cfg.Sessions,
		sleep:    cfg.Sleep,
	}
}

// Sessions exposes the session store, used by the messaging layer on shutdown.
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// HandleEvent processes one inbound event to completion. The caller
// serializes events per user.
func (e *Engine) HandleEvent(ctx context.Context, ev models.Event) error {
	slog.Debug("Flow HandleEvent", "from", ev.From, "kind", ev.Kind, "command", ev.Command, "button", ev.Button)

	switch ev.Kind {
	case models.EventCommand:
		return e.handleCommand(ctx, ev)
	case models.EventButton:
		return e.handleButton(ctx, ev)
	case models.EventText, models.EventPhoto:
		return e.handleMessage(ctx, ev)
	default:
		slog.Warn("Flow HandleEvent unknown event kind", "kind", ev.Kind)
		return nil
	}
}

// handleCommand routes slash commands. Commands interrupt whatever flow is
// active; only /start works for unregistered users.
func (e *Engine) handleCommand(ctx context.Context, ev models.Event) error {
	if ev.Command == "start" {
		return e.handleStart(ctx, ev)
	}

	user, err := e.requireUser(ctx, ev.From)
	if err != nil || user == nil {
		return err
	}

	switch ev.Command {
	case "menu":
		return e.showMenu(ctx, user)
	case "new_goal":
		return e.startGoalFlow(ctx, user)
	case "checkin":
		return e.startCheckinFlow(ctx, user)
	case "reflect":
		return e.startReflectFlow(ctx, user)
	case "crisis":
		return e.enterCrisis(ctx, user)
	case "normal":
		return e.handleNormalCommand(ctx, user)
	case "skip":
		return e.handleSkipCommand(ctx, user)
	default:
		return e.sendText(ctx, ev.From, textUnknownCommand)
	}
}

// handleButton routes inline button presses. Crisis sub-actions are guarded
// on User.Mode, not on the session stage, since the two can desynchronize
// across restarts.
func (e *Engine) handleButton(ctx context.Context, ev models.Event) error {
	user, err := e.requireUser(ctx, ev.From)
	if err != nil || user == nil {
		return err
	}

	switch ev.Button {
	case tagMenuGoal:
		return e.startGoalFlow(ctx, user)
	case tagMenuCheckin:
		return e.startCheckinFlow(ctx, user)
	case tagMenuReflect:
		return e.startReflectFlow(ctx, user)
	case tagMenuCrisis:
		return e.enterCrisis(ctx, user)
	case tagMenuBack:
		return e.showMenuEdit(ctx, user)

	case tagGoalSkip:
		return e.handleSkipCommand(ctx, user)

	case tagCheckinGoal:
		return e.handleCheckinSelection(ctx, user, ev.Payload)

	case tagReflectSkip:
		return e.handleReflectSkip(ctx, user)
	case tagReflectCancel:
		return e.handleReflectCancel(ctx, user)
	case tagReflectBreathe:
		return e.handleReflectBreathe(ctx, user)
	case tagReflectSaveStep:
		return e.handleReflectSaveStep(ctx, user)
	case tagReflectDone:
		return e.handleReflectDone(ctx, user)

	case tagCrisisBreathe:
		return e.handleCrisisBreatheChoice(ctx, user)
	case tagCrisisTalk:
		return e.handleCrisisTalk(ctx, user)
	case tagCrisisJustBe:
		return e.handleCrisisJustBe(ctx, user)
	case tagCrisisMicro:
		return e.handleCrisisMicro(ctx, user)
	case tagCrisisMicroTry:
		return e.handleCrisisMicroTry(ctx, user)
	case tagCrisisMicroSkip:
		return e.handleCrisisMicroSkip(ctx, user)
	case tagCrisisExitYes:
		return e.handleCrisisExitYes(ctx, user)
	case tagCrisisExitNo:
		return e.handleCrisisExitNo(ctx, user)

	case tagBreath478, tagBreathBox:
		return e.handleBreathingStart(ctx, user, ev.Button)
	case tagBreathRepeat:
		return e.handleBreathingRepeat(ctx, user)
	case tagBreathDone:
		return e.handleBreathingDone(ctx, user)

	default:
		slog.Warn("Flow unknown button tag", "tag", ev.Button, "from", ev.From)
		return nil
	}
}

// handleMessage routes free text and photos by the current session stage.
func (e *Engine) handleMessage(ctx context.Context, ev models.Event) error {
	user, err := e.store.GetUserByChatID(ev.From)
	if err != nil {
		return err
	}

	sess := e.sessions.Get(ev.From)

	// Onboarding runs before the user record is complete, so it is checked
	// first and tolerates a missing record.
	switch sess.Stage {
	case models.StageOnboardingName:
		return e.handleOnboardingName(ctx, user, ev)
	case models.StageOnboardingMainGoal:
		return e.handleOnboardingMainGoal(ctx, user, ev)
	}

	if user == nil {
		return e.sendText(ctx, ev.From, textNeedStart)
	}

	switch sess.Stage {
	case models.StageGoalTitle:
		return e.handleGoalTitle(ctx, user, ev)
	case models.StageGoalDescription:
		return e.handleGoalDescription(ctx, user, ev)
	case models.StageGoalPhoto:
		return e.handleGoalPhoto(ctx, user, ev)

	case models.StageCheckinSelection:
		return e.repromptCheckinSelection(ctx, user)
	case models.StageCheckinReport:
		return e.handleCheckinReport(ctx, user, ev)

	case models.StageReflectQ1, models.StageReflectQ2, models.StageReflectQ3,
		models.StageReflectQ4, models.StageReflectQ5, models.StageReflectQ6,
		models.StageReflectQ7:
		return e.handleReflectAnswer(ctx, user, ev)

	case models.StageCrisisFeeling:
		return e.handleCrisisFeelingText(ctx, user, ev)
	case models.StageCrisisMicroAction:
		return e.handleCrisisMicroActionText(ctx, user)
	case models.StageCrisisMicroReport:
		return e.handleCrisisMicroReport(ctx, user)
	case models.StageCrisisJustBeing:
		return e.handleCrisisJustBeingText(ctx, user)

	default:
		if user.Mode == models.ModeCrisis {
			return e.handleCrisisFeelingText(ctx, user, ev)
		}
		return e.sendText(ctx, user.ChatID, textIdleHint)
	}
}

// requireUser loads the user for a chat, prompting for /start when missing.
func (e *Engine) requireUser(ctx context.Context, chatID string) (*models.User, error) {
	user, err := e.store.GetUserByChatID(chatID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, e.sendText(ctx, chatID, textNeedStart)
	}
	return user, nil
}

// sendText delivers a message, logging delivery failures without failing the
// flow: a lost message must not wedge the state machine.
func (e *Engine) sendText(ctx context.Context, to, text string, buttons ...models.Button) error {
	if err := e.msg.SendText(ctx, to, text, buttons...); err != nil {
		slog.Error("Flow failed to send message", "to", to, "error", err)
	}
	return nil
}

// sendAnimation delivers a random animation from a mood category when one is
// available. Missing categories and send failures are silently skipped.
func (e *Engine) sendAnimation(ctx context.Context, to, category string) {
	ref := e.anims.Random(category)
	if ref == "" {
		return
	}
	if err := e.msg.SendAnimation(ctx, to, ref, ""); err != nil {
		slog.Warn("Flow failed to send animation", "to", to, "category", category, "error", err)
	}
}

// editLast edits the previous bot message, best effort.
func (e *Engine) editLast(ctx context.Context, to, text string) {
	if err := e.msg.EditLast(ctx, to, text); err != nil {
		slog.Debug("Flow edit failed", "to", to, "error", err)
	}
}
