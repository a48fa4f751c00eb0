package flow

import (
	"strings"
	"testing"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

func TestCrisisEntrySwitchesMode(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	before := time.Now()

	env.command(t, "chat1", "crisis")

	user, _ := env.store.GetUserByChatID("chat1")
	if user.Mode != models.ModeCrisis {
		t.Errorf("expected crisis mode, got %s", user.Mode)
	}
	if user.ModeUpdatedAt.Before(before) {
		t.Error("mode change timestamp must be recorded")
	}
	if env.stage("chat1") != models.StageCrisisFeeling {
		t.Errorf("expected feeling stage, got %s", env.stage("chat1"))
	}
}

func TestCrisisEntrySupersedesActiveFlow(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "new_goal")
	env.text(t, "chat1", "Половина цели")
	env.command(t, "chat1", "crisis")

	sess := env.engine.Sessions().Get("chat1")
	if sess.Stage != models.StageCrisisFeeling {
		t.Errorf("crisis must supersede the goal flow, got %s", sess.Stage)
	}
	if sess.GetScratch(models.ScratchGoalTitle) != "" {
		t.Error("previous flow scratch must be discarded")
	}
}

func TestCrisisGuardRejectsSubActionsInNormalMode(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	// Stage says crisis, mode says normal: the mode wins.
	sess := models.NewSession("chat1")
	sess.Stage = models.StageCrisisBreathing
	env.engine.Sessions().Set(sess)

	for _, tag := range []string{tagCrisisBreathe, tagCrisisMicro, tagCrisisTalk, tagBreath478, tagBreathRepeat, tagBreathDone} {
		env.msg.reset()
		env.button(t, "chat1", tag)
		if got := env.msg.lastMessage(t).Text; got != textCrisisGuard {
			t.Errorf("tag %s: expected guard message, got %q", tag, got)
		}
	}
}

func TestCrisisFeelingTextRedisplaysMenu(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")

	env.msg.reset()
	env.text(t, "chat1", "мне очень тяжело")

	last := env.msg.lastMessage(t)
	if !strings.Contains(last.Text, "Спасибо, что поделился") {
		t.Errorf("expected supportive acknowledgement, got %q", last.Text)
	}
	if len(last.Buttons) == 0 {
		t.Error("crisis menu must be redisplayed")
	}
	if env.stage("chat1") != models.StageCrisisFeeling {
		t.Errorf("feeling text must not transition, got %s", env.stage("chat1"))
	}
}

func TestCrisisMicroActionWithGoal(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")

	env.button(t, "chat1", tagCrisisMicro)
	if !env.msg.containsText("Learn guitar") {
		t.Error("micro action must reference the first active goal")
	}

	env.button(t, "chat1", tagCrisisMicroTry)
	if env.stage("chat1") != models.StageCrisisMicroReport {
		t.Fatalf("expected micro report stage, got %s", env.stage("chat1"))
	}

	env.msg.reset()
	env.text(t, "chat1", "записал одну идею")

	if !env.msg.containsText("Ты молодец") {
		t.Error("any micro report must be celebrated")
	}
	if env.stage("chat1") != models.StageCrisisFeeling {
		t.Errorf("micro report must return to the hub, got %s", env.stage("chat1"))
	}
}

func TestCrisisJustBeingLoops(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")

	env.button(t, "chat1", tagCrisisJustBe)
	if env.stage("chat1") != models.StageCrisisJustBeing {
		t.Fatalf("expected just-being stage, got %s", env.stage("chat1"))
	}

	env.text(t, "chat1", "...")
	if env.stage("chat1") != models.StageCrisisJustBeing {
		t.Errorf("free text must loop within just-being, got %s", env.stage("chat1"))
	}
}

func TestNormalCommandOutsideCrisis(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "normal")

	if got := env.msg.lastMessage(t).Text; got != textCrisisAlreadyNorm {
		t.Errorf("expected already-normal notice, got %q", got)
	}
}

func TestCrisisExitRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")

	env.command(t, "chat1", "normal")

	user, _ := env.store.GetUserByChatID("chat1")
	if user.Mode != models.ModeCrisis {
		t.Error("asking to exit must not switch the mode yet")
	}
	last := env.msg.lastMessage(t)
	if len(last.Buttons) != 2 {
		t.Fatalf("expected yes/no confirmation, got %d buttons", len(last.Buttons))
	}
}

func TestCrisisExitConfirmed(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")
	before := time.Now()

	env.msg.reset()
	env.button(t, "chat1", tagCrisisExitYes)

	user, _ := env.store.GetUserByChatID("chat1")
	if user.Mode != models.ModeNormal {
		t.Errorf("expected normal mode after confirmation, got %s", user.Mode)
	}
	if user.ModeUpdatedAt.Before(before) {
		t.Error("mode change timestamp must be updated")
	}
	if env.stage("chat1") != models.StageIdle {
		t.Errorf("session must be cleared, got %s", env.stage("chat1"))
	}

	// The scripted AI answer is not a valid mood label, so the selector falls
	// back to the neutral category for the exit animation.
	if len(env.msg.animations) != 1 || !strings.HasPrefix(env.msg.animations[0], "anim_you_got_this") {
		t.Errorf("expected neutral exit animation, got %v", env.msg.animations)
	}
}

func TestCrisisExitDeclined(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")

	env.button(t, "chat1", tagCrisisExitNo)

	user, _ := env.store.GetUserByChatID("chat1")
	if user.Mode != models.ModeCrisis {
		t.Error("declining must keep crisis mode")
	}
	if env.stage("chat1") != models.StageCrisisFeeling {
		t.Errorf("declining must return to the hub, got %s", env.stage("chat1"))
	}
}
