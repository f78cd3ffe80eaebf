package model

import "context"

// GenerationKind selects which text the generator capability should produce.
type GenerationKind string

const (
	KindGeneralReply       GenerationKind = "general_reply"
	KindPracticeQuestions  GenerationKind = "practice_questions"
	KindStressReliefTips   GenerationKind = "stress_relief_tips"
	KindStudyPlanNarrative GenerationKind = "study_plan_narrative"
)

var fallbackText = map[GenerationKind]string{
	KindGeneralReply:       "Sorry, I'm having trouble answering right now. Please try again in a moment.",
	KindPracticeQuestions:  "Sorry, I couldn't generate questions.",
	KindStressReliefTips:   "Take a deep breath. You've got this.",
	KindStudyPlanNarrative: "Sorry, I couldn't generate a plan right now.",
}

// FallbackText is the fixed reply used when generation for kind fails.
func FallbackText(kind GenerationKind) string {
	if s, ok := fallbackText[kind]; ok {
		return s
	}
	return fallbackText[KindGeneralReply]
}

// IntentClassifier labels a message. Errors and unknown labels are treated as general chat by callers.
type IntentClassifier interface {
	Classify(ctx context.Context, message string, history []string) (Intent, error)
}

// TextGenerator produces free-form text for one of the generation kinds.
type TextGenerator interface {
	Generate(ctx context.Context, kind GenerationKind, payload string) (string, error)
}

// PlanSink stores rendered plans. Callers never wait on it for the user response.
type PlanSink interface {
	PersistPlan(ctx context.Context, conversationID string, slots Slots, planText string) error
}
