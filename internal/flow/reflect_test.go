package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

func answerAllReflectQuestions(t *testing.T, env *testEnv, chatID string) {
	t.Helper()
	answers := []string{
		"устал", "4", "хочу больше энергии", "нет сил по вечерам",
		"на прошлой неделе", "помог режим сна", "лечь спать до 23:00",
	}
	for _, a := range answers {
		env.text(t, chatID, a)
	}
}

func TestReflectFullSession(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	if env.stage("chat1") != models.StageReflectQ1 {
		t.Fatalf("expected first question stage, got %s", env.stage("chat1"))
	}

	answerAllReflectQuestions(t, env, "chat1")

	if env.stage("chat1") != models.StageReflectPost {
		t.Errorf("expected post-reflect stage, got %s", env.stage("chat1"))
	}
	if env.ai.lastOpts.Temperature != 0.7 {
		t.Errorf("analysis temperature = %v, want 0.7", env.ai.lastOpts.Temperature)
	}
	if env.ai.lastOpts.MaxTokens != 800 {
		t.Errorf("analysis max tokens = %v, want 800", env.ai.lastOpts.MaxTokens)
	}
	if !env.msg.containsText("Результаты рефлексии") {
		t.Error("expected analysis result message")
	}
}

func TestReflectSkipStoresSentinel(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	env.button(t, "chat1", tagReflectSkip)

	sess := env.engine.Sessions().Get("chat1")
	if sess.Stage != models.StageReflectQ2 {
		t.Fatalf("skip must advance to the next question, got %s", sess.Stage)
	}
	if got := sess.GetScratch(models.ScratchReflectQ1); got != models.SkippedAnswer {
		t.Errorf("expected skip sentinel, got %q", got)
	}
}

func TestReflectCancelDiscardsAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	env.text(t, "chat1", "тревожно")
	env.button(t, "chat1", tagReflectCancel)

	if env.stage("chat1") != models.StageIdle {
		t.Errorf("cancel must clear the session, got %s", env.stage("chat1"))
	}
	sess := env.engine.Sessions().Get("chat1")
	if sess.GetScratch(models.ScratchReflectQ1) != "" {
		t.Error("answers must be discarded on cancel")
	}
}

func TestReflectMixedAnswersFormatAnalysisPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	env.text(t, "chat1", "устал")
	env.button(t, "chat1", tagReflectSkip)
	env.text(t, "chat1", "хочу энергии")
	env.button(t, "chat1", tagReflectSkip)
	env.text(t, "chat1", "весной")
	env.button(t, "chat1", tagReflectSkip)
	env.text(t, "chat1", "прогулка")

	if len(env.ai.lastMessages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(env.ai.lastMessages))
	}
	want := "- Как себя чувствует: устал\n" +
		"- Оценка состояния (1-10): " + models.SkippedAnswer + "\n" +
		"- Что хочет изменить: хочу энергии\n" +
		"- Что мешает двигаться: " + models.SkippedAnswer + "\n" +
		"- Когда последний раз получалось: весной\n" +
		"- Что помогло тогда: " + models.SkippedAnswer + "\n" +
		"- Маленький шаг на сегодня: прогулка"
	got := env.ai.lastMessages[1].Content
	if !strings.Contains(got, want) {
		t.Errorf("analysis prompt must list answers in question order with skip sentinels\ngot:\n%s\nwant block:\n%s", got, want)
	}
}

func TestReflectAIFailureStillReachesPostStage(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")
	env.ai.err = errors.New("upstream down")

	env.command(t, "chat1", "reflect")
	answerAllReflectQuestions(t, env, "chat1")

	if env.stage("chat1") != models.StageReflectPost {
		t.Errorf("post stage must be reached despite AI failure, got %s", env.stage("chat1"))
	}
	if !env.msg.containsText("Не получилось проанализировать") {
		t.Error("expected graceful failure message")
	}
}

func TestReflectSaveStepCreatesGoal(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	answerAllReflectQuestions(t, env, "chat1")
	env.button(t, "chat1", tagReflectSaveStep)

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 2 {
		t.Fatalf("expected the step saved as a goal, got %d goals", len(goals))
	}
	if goals[1].Title != "лечь спать до 23:00" {
		t.Errorf("unexpected step goal title %q", goals[1].Title)
	}
	if env.stage("chat1") != models.StageIdle {
		t.Errorf("session must end after saving, got %s", env.stage("chat1"))
	}
}

func TestReflectSaveStepSkippedAnswer(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	for i := 0; i < 7; i++ {
		env.button(t, "chat1", tagReflectSkip)
	}
	env.button(t, "chat1", tagReflectSaveStep)

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 1 {
		t.Fatalf("skipped step must not create a goal, got %d goals", len(goals))
	}
	if got := env.msg.lastMessage(t).Text; got != textReflectStepEmpty {
		t.Errorf("expected step prompt, got %q", got)
	}
}

func TestReflectDoneClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.command(t, "chat1", "reflect")
	answerAllReflectQuestions(t, env, "chat1")
	env.button(t, "chat1", tagReflectDone)

	if env.stage("chat1") != models.StageIdle {
		t.Errorf("done must clear the session, got %s", env.stage("chat1"))
	}
}

func TestReflectPostButtonsIgnoredOutsideStage(t *testing.T) {
	env := newTestEnv(t)
	user := env.onboard(t, "chat1", "Alex", "Learn guitar")

	env.button(t, "chat1", tagReflectSaveStep)

	goals, _ := env.store.ListGoals(user.ID, models.GoalStatusActive)
	if len(goals) != 1 {
		t.Error("stale post-reflect button must be a no-op")
	}
}
