// Package slots collects the five facts a study plan needs, one question at a time.
package slots

import (
	"strings"

	"github.com/study-buddy/server/internal/agent/model"
)

// RequiredField pairs a slot with the question that asks for it.
type RequiredField struct {
	Slot   model.SlotName
	Prompt string
}

// RequiredFields is the fixed collection order.
var RequiredFields = []RequiredField{
	{model.SlotEducationLevel, "What is your current education level? (e.g., High School, College)"},
	{model.SlotSubjectsCount, "How many subjects are you focusing on?"},
	{model.SlotStudyHours, "How many hours can you dedicate to studying daily?"},
	{model.SlotExamTimeline, "When are your exams starting? (e.g., in 2 weeks, 10 days)"},
	{model.SlotStudyHabit, "How would you describe your study habits? (e.g., Consistent, Last-minute, Procrastinator)"},
}

// SlotForQuestion maps a previously asked question to the slot its answer fills.
// Matching is by keyword, first match wins. A question mentioning "exam" without
// "days" maps to nothing.
func SlotForQuestion(question string) (model.SlotName, bool) {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "level"):
		return model.SlotEducationLevel, true
	case strings.Contains(q, "subjects"):
		return model.SlotSubjectsCount, true
	case strings.Contains(q, "hours"):
		return model.SlotStudyHours, true
	case strings.Contains(q, "exam") && !strings.Contains(q, "days"):
		return "", false
	case strings.Contains(q, "days"), strings.Contains(q, "when"), strings.Contains(q, "timeline"):
		return model.SlotExamTimeline, true
	case strings.Contains(q, "habit"):
		return model.SlotStudyHabit, true
	}
	return "", false
}

// NextQuestion returns the prompt for the first missing slot, or nil when all are present.
func NextQuestion(s model.Slots) *string {
	for _, f := range RequiredFields {
		if !s.Has(f.Slot) {
			p := f.Prompt
			return &p
		}
	}
	return nil
}

// Complete reports whether every required slot is present.
func Complete(s model.Slots) bool {
	return NextQuestion(s) == nil
}

// Collect stores answer in the slot lastQuestion asked for (if any) and returns
// the updated slots with the next question to ask. A nil question means the
// collection is complete. current is not modified.
func Collect(current model.Slots, lastQuestion *string, answer string) (model.Slots, *string) {
	updated := current
	if lastQuestion != nil {
		if slot, ok := SlotForQuestion(*lastQuestion); ok && strings.TrimSpace(answer) != "" {
			updated = updated.With(slot, answer)
		}
	}
	return updated, NextQuestion(updated)
}
