package flow

import (
	"testing"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

func TestBreathing478Pacing(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")
	env.button(t, "chat1", tagCrisisBreathe)

	env.button(t, "chat1", tagBreath478)

	want := []time.Duration{time.Second, 4 * time.Second, 7 * time.Second, 8 * time.Second}
	if len(env.sleeps) != len(want) {
		t.Fatalf("expected %d pacing sleeps, got %d (%v)", len(want), len(env.sleeps), env.sleeps)
	}
	for i, d := range want {
		if env.sleeps[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, env.sleeps[i], d)
		}
	}

	// Phase updates after the first are edits on the same message.
	if len(env.msg.edits) < 2 {
		t.Fatalf("expected phase edits, got %v", env.msg.edits)
	}
	if !env.msg.containsText(textInhale4) {
		t.Error("expected inhale phase message")
	}
}

func TestBreathingBoxPacing(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")
	env.button(t, "chat1", tagCrisisBreathe)

	env.button(t, "chat1", tagBreathBox)

	want := []time.Duration{time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second}
	if len(env.sleeps) != len(want) {
		t.Fatalf("expected %d pacing sleeps, got %d (%v)", len(want), len(env.sleeps), env.sleeps)
	}
	for i, d := range want {
		if env.sleeps[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, env.sleeps[i], d)
		}
	}
}

func TestBreathingRepeatReusesTechnique(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")
	env.button(t, "chat1", tagCrisisBreathe)
	env.button(t, "chat1", tagBreathBox)

	env.sleeps = nil
	env.button(t, "chat1", tagBreathRepeat)

	// Box has 4 phases plus the lead-in pause.
	if len(env.sleeps) != 5 {
		t.Errorf("repeat must rerun the stored box technique, got %d sleeps", len(env.sleeps))
	}
}

func TestBreathingDoneOffersNextSteps(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.command(t, "chat1", "crisis")
	env.button(t, "chat1", tagCrisisBreathe)
	env.button(t, "chat1", tagBreath478)

	env.msg.reset()
	env.button(t, "chat1", tagBreathDone)

	last := env.msg.lastMessage(t)
	tags := make(map[string]bool)
	for _, b := range last.Buttons {
		tags[b.Tag] = true
	}
	if !tags[tagCrisisMicro] || !tags[tagCrisisJustBe] {
		t.Errorf("expected micro action and just-being options, got %v", last.Buttons)
	}
	if env.stage("chat1") != models.StageCrisisFeeling {
		t.Errorf("done must return to the hub, got %s", env.stage("chat1"))
	}
}

func TestBreathingFromReflectDoesNotRequireCrisis(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	answerAllReflectQuestions(t, env, "chat1")
	env.button(t, "chat1", tagReflectBreathe)

	env.msg.reset()
	env.button(t, "chat1", tagBreath478)

	user, _ := env.store.GetUserByChatID("chat1")
	if user.Mode != models.ModeNormal {
		t.Fatal("reflect breathing must not require crisis mode")
	}
	last := env.msg.lastMessage(t)
	tags := make(map[string]bool)
	for _, b := range last.Buttons {
		tags[b.Tag] = true
	}
	if !tags[tagReflectDone] {
		t.Errorf("breathing from reflection must return to post-reflect actions, got %v", last.Buttons)
	}
	if env.stage("chat1") != models.StageReflectPost {
		t.Errorf("expected post-reflect stage, got %s", env.stage("chat1"))
	}
}
