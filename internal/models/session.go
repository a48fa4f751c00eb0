// Package models defines session state structures for conversation flows.
package models

import "time"

// FlowType represents one of the guided interaction flows.
type FlowType string

const (
	FlowNone       FlowType = "none"
	FlowOnboarding FlowType = "onboarding"
	FlowGoal       FlowType = "goal"
	FlowCheckin    FlowType = "checkin"
	FlowReflect    FlowType = "reflect"
	FlowCrisis     FlowType = "crisis"
)

// Stage represents a position within a flow state machine. The value encodes
// both the active flow and the position within it; StageIdle is the shared
// idle state.
type Stage string

const (
	StageIdle Stage = "IDLE"

	// Onboarding flow.
	StageOnboardingName     Stage = "ONBOARDING_WAITING_NAME"
	StageOnboardingMainGoal Stage = "ONBOARDING_WAITING_MAIN_GOAL"

	// Goal-setting flow.
	StageGoalTitle       Stage = "GOAL_WAITING_TITLE"
	StageGoalDescription Stage = "GOAL_WAITING_DESCRIPTION"
	StageGoalPhoto       Stage = "GOAL_WAITING_PHOTO"

	// Check-in flow.
	StageCheckinSelection Stage = "CHECKIN_WAITING_GOAL_SELECTION"
	StageCheckinReport    Stage = "CHECKIN_WAITING_REPORT"

	// Reflection flow.
	StageReflectQ1         Stage = "REFLECT_Q1_FEELING"
	StageReflectQ2         Stage = "REFLECT_Q2_SCALE"
	StageReflectQ3         Stage = "REFLECT_Q3_CHANGE"
	StageReflectQ4         Stage = "REFLECT_Q4_OBSTACLE"
	StageReflectQ5         Stage = "REFLECT_Q5_LAST_SUCCESS"
	StageReflectQ6         Stage = "REFLECT_Q6_WHAT_HELPED"
	StageReflectQ7         Stage = "REFLECT_Q7_ONE_STEP"
	StageReflectProcessing Stage = "REFLECT_PROCESSING"
	StageReflectPost       Stage = "REFLECT_POST"

	// Crisis mode.
	StageCrisisFeeling     Stage = "CRISIS_WAITING_FEELING"
	StageCrisisBreathing   Stage = "CRISIS_BREATHING"
	StageCrisisMicroAction Stage = "CRISIS_MICRO_ACTION"
	StageCrisisMicroReport Stage = "CRISIS_WAITING_MICRO_REPORT"
	StageCrisisJustBeing   Stage = "CRISIS_JUST_BEING"
)

// Flow reports which flow a stage belongs to.
func (s Stage) Flow() FlowType {
	switch s {
	case StageOnboardingName, StageOnboardingMainGoal:
		return FlowOnboarding
	case StageGoalTitle, StageGoalDescription, StageGoalPhoto:
		return FlowGoal
	case StageCheckinSelection, StageCheckinReport:
		return FlowCheckin
	case StageReflectQ1, StageReflectQ2, StageReflectQ3, StageReflectQ4,
		StageReflectQ5, StageReflectQ6, StageReflectQ7,
		StageReflectProcessing, StageReflectPost:
		return FlowReflect
	case StageCrisisFeeling, StageCrisisBreathing, StageCrisisMicroAction,
		StageCrisisMicroReport, StageCrisisJustBeing:
		return FlowCrisis
	default:
		return FlowNone
	}
}

// ScratchKey represents a key for transient mid-flow data.
type ScratchKey string

// Scratch key constants. Values under these keys are only meaningful while
// the session stage belongs to the flow that wrote them.
const (
	ScratchGoalTitle          ScratchKey = "goalTitle"
	ScratchGoalDescription    ScratchKey = "goalDescription"
	ScratchCheckinGoalID      ScratchKey = "checkinGoalID"
	ScratchBreathingTechnique ScratchKey = "breathingTechnique"

	ScratchReflectQ1 ScratchKey = "reflectQ1Feeling"
	ScratchReflectQ2 ScratchKey = "reflectQ2Scale"
	ScratchReflectQ3 ScratchKey = "reflectQ3Change"
	ScratchReflectQ4 ScratchKey = "reflectQ4Obstacle"
	ScratchReflectQ5 ScratchKey = "reflectQ5LastSuccess"
	ScratchReflectQ6 ScratchKey = "reflectQ6WhatHelped"
	ScratchReflectQ7 ScratchKey = "reflectQ7OneStep"
)

// SkippedAnswer is the sentinel stored for a skipped reflection question.
const SkippedAnswer = "(пропущено)"

// Session holds the ephemeral conversation state for one user.
type Session struct {
	UserKey   string                `json:"user_key"`
	Stage     Stage                 `json:"stage"`
	Scratch   map[ScratchKey]string `json:"scratch,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewSession creates an idle session for the given user key.
func NewSession(userKey string) Session {
	return Session{
		UserKey:   userKey,
		Stage:     StageIdle,
		Scratch:   make(map[ScratchKey]string),
		UpdatedAt: time.Now(),
	}
}

// SetScratch stores a transient value, allocating the map if needed.
func (s *Session) SetScratch(key ScratchKey, value string) {
	if s.Scratch == nil {
		s.Scratch = make(map[ScratchKey]string)
	}
	s.Scratch[key] = value
}

// GetScratch returns the transient value for key, or "" if absent.
func (s *Session) GetScratch(key ScratchKey) string {
	if s.Scratch == nil {
		return ""
	}
	return s.Scratch[key]
}

// ClearScratch discards all transient data. Called on every flow entry and
// exit so scratch is never read under the wrong stage.
func (s *Session) ClearScratch() {
	s.Scratch = make(map[ScratchKey]string)
}
