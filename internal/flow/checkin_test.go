package flow

import (
	"errors"
	"testing"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
)

func TestCheckinFullFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")

	env.command(t, "chat1", "checkin")
	if env.stage("chat1") != models.StageCheckinSelection {
		t.Fatalf("expected selection stage, got %s", env.stage("chat1"))
	}

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	env.buttonPayload(t, "chat1", tagCheckinGoal, goals[0].ID)
	if env.stage("chat1") != models.StageCheckinReport {
		t.Fatalf("expected report stage, got %s", env.stage("chat1"))
	}

	env.text(t, "chat1", "did a loop today")

	checkins := env.store.CheckIns()
	if len(checkins) != 1 {
		t.Fatalf("expected 1 check-in, got %d", len(checkins))
	}
	if checkins[0].ReportText != "did a loop today" {
		t.Errorf("unexpected report text %q", checkins[0].ReportText)
	}
	if checkins[0].GoalID != goals[0].ID {
		t.Error("check-in must reference the selected goal")
	}
	if checkins[0].AIFeedback != "ответ коуча" {
		t.Errorf("unexpected feedback %q", checkins[0].AIFeedback)
	}
	if env.stage("chat1") != models.StageIdle {
		t.Errorf("flow must end idle, got %s", env.stage("chat1"))
	}
}

func TestCheckinWithoutGoals(t *testing.T) {
	env := newTestEnv(t)
	env.command(t, "chat1", "start")
	env.text(t, "chat1", "Alex")
	// Abandon onboarding before the first goal exists.
	env.engine.Sessions().Clear("chat1")

	env.command(t, "chat1", "checkin")

	if got := env.msg.lastMessage(t).Text; got != textCheckinNoGoals {
		t.Errorf("expected no-goals guidance, got %q", got)
	}
	if env.stage("chat1") != models.StageIdle {
		t.Error("flow must not be entered without goals")
	}
}

func TestCheckinRejectsForeignGoal(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Run 5k")
	other := env.onboard(t, "chat2", "Sam", "Write a book")

	otherGoals, _ := env.store.ListGoals(other.ID, models.GoalStatusActive)

	env.command(t, "chat1", "checkin")
	env.buttonPayload(t, "chat1", tagCheckinGoal, otherGoals[0].ID)

	if env.stage("chat1") != models.StageIdle {
		t.Errorf("foreign selection must clear the session, got %s", env.stage("chat1"))
	}
	if got := env.msg.lastMessage(t).Text; got != textCheckinBadGoal {
		t.Errorf("expected rejection message, got %q", got)
	}
	if len(env.store.CheckIns()) != 0 {
		t.Error("no check-in may be created from a foreign goal")
	}
}

func TestCheckinRejectsUnknownGoalID(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Run 5k")

	env.command(t, "chat1", "checkin")
	env.buttonPayload(t, "chat1", tagCheckinGoal, util.GenerateGoalID())

	if env.stage("chat1") != models.StageIdle {
		t.Errorf("unknown selection must clear the session, got %s", env.stage("chat1"))
	}
}

func TestCheckinStaleSelectionButtonIgnoredOutsideStage(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")
	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)

	env.command(t, "chat1", "reflect")
	env.text(t, "chat1", "устал")
	env.buttonPayload(t, "chat1", tagCheckinGoal, goals[0].ID)

	if env.stage("chat1") != models.StageReflectQ2 {
		t.Errorf("stale selection button must not hijack the reflect flow, got %s", env.stage("chat1"))
	}
	sess := env.engine.Sessions().Get("chat1")
	if got := sess.GetScratch(models.ScratchReflectQ1); got != "устал" {
		t.Errorf("reflect answers must survive the stale button, got %q", got)
	}
	if sess.GetScratch(models.ScratchCheckinGoalID) != "" {
		t.Error("stale button must not plant check-in scratch into another flow")
	}
}

func TestCheckinFreeTextRepromptKeepsGoalKeyboard(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")
	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)

	env.command(t, "chat1", "checkin")
	env.text(t, "chat1", "вчера бегал")

	if env.stage("chat1") != models.StageCheckinSelection {
		t.Fatalf("free text must keep the selection stage, got %s", env.stage("chat1"))
	}
	last := env.msg.lastMessage(t)
	if last.Text != textCheckinPickButton {
		t.Errorf("expected selection nudge, got %q", last.Text)
	}
	if len(last.Buttons) != 1 || last.Buttons[0].Payload != goals[0].ID {
		t.Errorf("re-prompt must carry the goal keyboard again, got %+v", last.Buttons)
	}
}

func TestCheckinPhotoFailureReprompts(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")
	env.msg.mediaErr = errors.New("download failed")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	env.command(t, "chat1", "checkin")
	env.buttonPayload(t, "chat1", tagCheckinGoal, goals[0].ID)
	env.photo(t, "chat1", "ref1", "")

	if env.stage("chat1") != models.StageCheckinReport {
		t.Errorf("photo failure must not leave the report stage, got %s", env.stage("chat1"))
	}
	if got := env.msg.lastMessage(t).Text; got != textCheckinPhotoFailed {
		t.Errorf("expected photo failure prompt, got %q", got)
	}
	if len(env.store.CheckIns()) != 0 {
		t.Error("no check-in may be created from a failed photo")
	}
}

func TestCheckinPhotoWithCaption(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")
	env.msg.mediaByRef["ref1"] = "aGVsbG8="

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	env.command(t, "chat1", "checkin")
	env.buttonPayload(t, "chat1", tagCheckinGoal, goals[0].ID)
	env.photo(t, "chat1", "ref1", "пробежал у озера")

	checkins := env.store.CheckIns()
	if len(checkins) != 1 {
		t.Fatalf("expected 1 check-in, got %d", len(checkins))
	}
	if checkins[0].ReportText != "пробежал у озера" {
		t.Errorf("caption must become the report text, got %q", checkins[0].ReportText)
	}
	if checkins[0].ImageBase64 != "aGVsbG8=" {
		t.Error("photo payload must be stored with the check-in")
	}
}

func TestCheckinPersistsDespiteAIFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Run 5k")
	env.ai.err = errors.New("upstream down")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	env.command(t, "chat1", "checkin")
	env.buttonPayload(t, "chat1", tagCheckinGoal, goals[0].ID)
	env.text(t, "chat1", "сделал подход")

	checkins := env.store.CheckIns()
	if len(checkins) != 1 {
		t.Fatalf("check-in must persist despite AI failure, got %d", len(checkins))
	}
	if checkins[0].AIFeedback != checkinFallbackFeedback {
		t.Errorf("expected fallback feedback, got %q", checkins[0].AIFeedback)
	}
	if checkins[0].CreatedAt.After(time.Now()) {
		t.Error("created timestamp must not be in the future")
	}
}
