package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/content"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/mood"
)

// Breathing technique identifiers stored in session scratch.
const (
	technique478 = "478"
	techniqueBox = "box"
)

// breathPhase is one timed step of a guided breathing cycle.
type breathPhase struct {
	text string
	hold time.Duration
}

var phases478 = []breathPhase{
	{textInhale4, 4 * time.Second},
	{textHold7, 7 * time.Second},
	{textExhale8, 8 * time.Second},
}

var phasesBox = []breathPhase{
	{textInhale4, 4 * time.Second},
	{textHold4, 4 * time.Second},
	{textExhale4, 4 * time.Second},
	{textHold4, 4 * time.Second},
}

// handleCrisisBreatheChoice shows the technique selection inside crisis mode.
func (e *Engine) handleCrisisBreatheChoice(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisBreathing
	e.sessions.Set(sess)

	return e.sendText(ctx, user.ChatID, textBreathingChoose, breathingChoiceKeyboard()...)
}

// handleBreathingStart runs one guided cycle of the chosen technique. The
// button is reachable from crisis mode and from the post-reflection actions;
// outside crisis mode the cycle ends back in the reflection actions.
func (e *Engine) handleBreathingStart(ctx context.Context, user *models.User, tag string) error {
	technique := technique478
	intro := textBreathingStart478
	if tag == tagBreathBox {
		technique = techniqueBox
		intro = textBreathingStartBox
	}

	sess := e.sessions.Get(user.ChatID)
	fromReflect := sess.Stage == models.StageReflectPost

	if !fromReflect {
		ok, err := e.requireCrisis(ctx, user)
		if !ok {
			return err
		}
		sess.Stage = models.StageCrisisBreathing
	}
	sess.SetScratch(models.ScratchBreathingTechnique, technique)
	e.sessions.Set(sess)

	e.editLast(ctx, user.ChatID, intro)
	return e.runBreathingCycle(ctx, user, technique, fromReflect)
}

// handleBreathingRepeat runs another cycle of the stored technique.
func (e *Engine) handleBreathingRepeat(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	technique := sess.GetScratch(models.ScratchBreathingTechnique)
	if technique == "" {
		technique = technique478
	}

	e.editLast(ctx, user.ChatID, textBreathingRepeat)
	return e.runBreathingCycle(ctx, user, technique, false)
}

// handleBreathingDone leaves the breathing sub-flow and offers a micro
// action or just being.
func (e *Engine) handleBreathingDone(ctx context.Context, user *models.User) error {
	ok, err := e.requireCrisis(ctx, user)
	if !ok {
		return err
	}

	sess := e.sessions.Get(user.ChatID)
	sess.Stage = models.StageCrisisFeeling
	e.sessions.Set(sess)

	mantra := content.RandomMantra(content.MantraBreathing)
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textBreathingAfterFmt, mantra), postBreathingKeyboard()...)
}

// runBreathingCycle walks the user through one timed cycle. It blocks between
// phases using the injected sleep; the dispatcher runs each user on its own
// worker, so one user breathing never delays another. Cancellation (shutdown)
// aborts mid-cycle without a trailing message.
func (e *Engine) runBreathingCycle(ctx context.Context, user *models.User, technique string, fromReflect bool) error {
	phases := phases478
	if technique == techniqueBox {
		phases = phasesBox
	}

	if err := e.sleep(ctx, time.Second); err != nil {
		return err
	}

	for i, phase := range phases {
		if i == 0 {
			if err := e.sendText(ctx, user.ChatID, phase.text); err != nil {
				return err
			}
		} else {
			e.editLast(ctx, user.ChatID, phase.text)
		}
		if err := e.sleep(ctx, phase.hold); err != nil {
			return err
		}
	}

	mantra := content.RandomMantra(content.MantraBreathing)
	if fromReflect {
		return e.sendText(ctx, user.ChatID, fmt.Sprintf(textBreathingReflected, mantra), postReflectKeyboard()...)
	}

	e.sendAnimation(ctx, user.ChatID, string(mood.CategoryBreathe))
	return e.sendText(ctx, user.ChatID, fmt.Sprintf(textBreathingDoneFmt, mantra), breathingRepeatKeyboard()...)
}
