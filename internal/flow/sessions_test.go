package flow

import (
	"testing"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

func TestSessionStoreGetCreatesIdle(t *testing.T) {
	s := NewSessionStore()

	sess := s.Get("u1")
	if sess.Stage != models.StageIdle {
		t.Errorf("expected idle stage, got %s", sess.Stage)
	}
	if sess.UserKey != "u1" {
		t.Errorf("expected user key u1, got %s", sess.UserKey)
	}
	if s.Len() != 0 {
		t.Error("Get must not persist the implicit session")
	}
}

func TestSessionStoreSetAndClear(t *testing.T) {
	s := NewSessionStore()

	sess := models.NewSession("u1")
	sess.Stage = models.StageGoalTitle
	sess.SetScratch(models.ScratchGoalTitle, "run")
	s.Set(sess)

	got := s.Get("u1")
	if got.Stage != models.StageGoalTitle {
		t.Errorf("expected stored stage, got %s", got.Stage)
	}
	if got.GetScratch(models.ScratchGoalTitle) != "run" {
		t.Error("scratch value lost")
	}

	s.Clear("u1")
	if s.Get("u1").Stage != models.StageIdle {
		t.Error("Clear must reset to idle")
	}
	if s.Len() != 0 {
		t.Error("Clear must drop the session")
	}
}

func TestSessionStoreIsolatesUsers(t *testing.T) {
	s := NewSessionStore()

	a := models.NewSession("a")
	a.Stage = models.StageReflectQ1
	s.Set(a)

	if s.Get("b").Stage != models.StageIdle {
		t.Error("sessions must be per user")
	}
}
