package model

import (
	"context"
	"time"
)

// Intent is the coarse classification of a user message.
type Intent string

const (
	IntentNone              Intent = "none"
	IntentStudyPlanning     Intent = "study_planning"
	IntentPracticeQuestions Intent = "practice_questions"
	IntentStressRelief      Intent = "stress_relief"
	IntentGeneralChat       Intent = "general_chat"
)

// Intents lists the labels a classifier may return.
var Intents = []Intent{IntentStudyPlanning, IntentPracticeQuestions, IntentStressRelief, IntentGeneralChat}

// ParseIntent normalises a raw label. Unknown labels report false.
func ParseIntent(label string) (Intent, bool) {
	for _, in := range Intents {
		if string(in) == label {
			return in, true
		}
	}
	return IntentGeneralChat, false
}

// SlotName names one of the five facts required before a plan can be rendered.
type SlotName string

const (
	SlotEducationLevel SlotName = "education_level"
	SlotSubjectsCount  SlotName = "subjects_count"
	SlotStudyHours     SlotName = "study_hours"
	SlotExamTimeline   SlotName = "exam_timeline"
	SlotStudyHabit     SlotName = "study_habit"
)

// Slots holds the collected answers. A nil field has not been collected yet.
type Slots struct {
	EducationLevel *string `json:"education_level,omitempty"`
	SubjectsCount  *string `json:"subjects_count,omitempty"`
	StudyHours     *string `json:"study_hours,omitempty"`
	ExamTimeline   *string `json:"exam_timeline,omitempty"`
	StudyHabit     *string `json:"study_habit,omitempty"`
}

func (s *Slots) field(name SlotName) **string {
	switch name {
	case SlotEducationLevel:
		return &s.EducationLevel
	case SlotSubjectsCount:
		return &s.SubjectsCount
	case SlotStudyHours:
		return &s.StudyHours
	case SlotExamTimeline:
		return &s.ExamTimeline
	case SlotStudyHabit:
		return &s.StudyHabit
	}
	return nil
}

// Get returns the value of a slot and whether it has been collected.
func (s Slots) Get(name SlotName) (string, bool) {
	f := s.field(name)
	if f == nil || *f == nil {
		return "", false
	}
	return **f, true
}

// Has reports whether the slot has been collected.
func (s Slots) Has(name SlotName) bool {
	_, ok := s.Get(name)
	return ok
}

// With returns a copy of s with the slot set. Unknown names return s unchanged.
func (s Slots) With(name SlotName, value string) Slots {
	f := s.field(name)
	if f == nil {
		return s
	}
	v := value
	*f = &v
	return s
}

// Map flattens the collected slots, mostly for logging and storage.
func (s Slots) Map() map[string]string {
	out := make(map[string]string, 5)
	for _, name := range []SlotName{SlotEducationLevel, SlotSubjectsCount, SlotStudyHours, SlotExamTimeline, SlotStudyHabit} {
		if v, ok := s.Get(name); ok {
			out[string(name)] = v
		}
	}
	return out
}

// ConversationState is everything remembered about one conversation between turns.
type ConversationState struct {
	ConversationID  string    `json:"conversation_id"`
	History         []string  `json:"history"`
	Intent          Intent    `json:"intent"`
	Slots           Slots     `json:"slots"`
	PendingQuestion *string   `json:"pending_question,omitempty"`
	PlanGenerated   bool      `json:"plan_generated"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewConversationState returns the default state for an unseen conversation.
func NewConversationState(conversationID string) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		History:        []string{},
		Intent:         IntentNone,
	}
}

// Clone returns a deep copy so a turn can work on its own snapshot.
func (c *ConversationState) Clone() *ConversationState {
	if c == nil {
		return nil
	}
	out := *c
	out.History = append([]string(nil), c.History...)
	out.Slots = Slots{}
	for name, v := range c.Slots.Map() {
		out.Slots = out.Slots.With(SlotName(name), v)
	}
	if c.PendingQuestion != nil {
		q := *c.PendingQuestion
		out.PendingQuestion = &q
	}
	return &out
}

// ConversationStore owns conversation state keyed by conversation identifier.
type ConversationStore interface {
	// Load returns the stored state, or a fresh state for an unknown identifier.
	Load(ctx context.Context, conversationID string) (*ConversationState, error)

	// Save replaces the stored state for state.ConversationID.
	Save(ctx context.Context, state *ConversationState) error

	// Delete forgets a conversation.
	Delete(ctx context.Context, conversationID string) error
}
