package flow

import (
	"errors"
	"testing"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

func TestGoalFlowWithPhotoSkip(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "new_goal")
	env.text(t, "chat1", "Пробежать марафон")
	env.text(t, "chat1", "Хочу доказать себе, что могу")
	if env.stage("chat1") != models.StageGoalPhoto {
		t.Fatalf("expected photo stage, got %s", env.stage("chat1"))
	}

	env.command(t, "chat1", "skip")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}
	created := goals[1]
	if created.Title != "Пробежать марафон" {
		t.Errorf("unexpected title %q", created.Title)
	}
	if created.Description != "Хочу доказать себе, что могу" {
		t.Errorf("unexpected description %q", created.Description)
	}
	if created.ImageBase64 != "" {
		t.Error("skipped photo must leave image empty")
	}
	if env.stage("chat1") != models.StageIdle {
		t.Errorf("flow must end idle, got %s", env.stage("chat1"))
	}
}

func TestGoalFlowWithPhoto(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.msg.mediaByRef["ref1"] = "aGVsbG8="

	env.command(t, "chat1", "new_goal")
	env.text(t, "chat1", "Нарисовать картину")
	env.text(t, "chat1", "Для души")
	env.photo(t, "chat1", "ref1", "")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if goals[len(goals)-1].ImageBase64 != "aGVsbG8=" {
		t.Error("expected mood-board image stored with the goal")
	}
}

func TestGoalPhotoDownloadFailureFinalizesWithoutImage(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.msg.mediaErr = errors.New("download failed")

	env.command(t, "chat1", "new_goal")
	env.text(t, "chat1", "Нарисовать картину")
	env.text(t, "chat1", "Для души")
	env.photo(t, "chat1", "ref1", "")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 2 {
		t.Fatalf("goal must be created despite the photo failure, got %d goals", len(goals))
	}
	if goals[1].ImageBase64 != "" {
		t.Error("failed download must leave image empty")
	}
	if !env.msg.containsText(textGoalPhotoFailed) {
		t.Error("expected photo failure notice")
	}
}

func TestGoalCreatedEvenWhenAIFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.ai.err = errors.New("upstream down")

	env.command(t, "chat1", "new_goal")
	env.text(t, "chat1", "Выучить испанский")
	env.text(t, "chat1", "Хочу путешествовать")
	env.command(t, "chat1", "skip")

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 2 {
		t.Fatalf("goal must be saved before the AI call, got %d goals", len(goals))
	}
}

func TestGoalFinalizeWithoutTitleAborts(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	// Force the photo stage without a stored title.
	sess := models.NewSession("chat1")
	sess.Stage = models.StageGoalPhoto
	env.engine.Sessions().Set(sess)

	env.command(t, "chat1", "skip")

	if got := env.msg.lastMessage(t).Text; got != textGoalLostTitle {
		t.Errorf("expected restart guidance, got %q", got)
	}
	if env.stage("chat1") != models.StageIdle {
		t.Errorf("aborted flow must end idle, got %s", env.stage("chat1"))
	}
}
