package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/study-buddy/server/internal/agent/model"
)

var intentKeywords = []struct {
	intent   model.Intent
	keywords []string
}{
	{model.IntentStudyPlanning, []string{"plan", "schedule", "routine", "timetable", "study"}},
	{model.IntentPracticeQuestions, []string{"practice", "question", "quiz", "problem"}},
	{model.IntentStressRelief, []string{"stress", "anxious", "tired", "worry"}},
}

// KeywordClassifier is the classifier used when no model API key is configured.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, message string, _ []string) (model.Intent, error) {
	lower := strings.ToLower(message)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent, nil
			}
		}
	}
	return model.IntentGeneralChat, nil
}

const (
	offlineGeneralReply  = "I need a Google API Key to think! Please configure it."
	offlineStressTip     = "Breathe in, breathe out..."
	offlinePlanNarrative = "Cannot generate plan without API key."
	biologyQuestions     = "**No problem!** Here are some practice questions for your biology exam:\n\n" +
		"1. What is the function of mitochondria in cells?\n" +
		"2. Explain the process of photosynthesis."
)

// CannedGenerator returns fixed replies when no model API key is configured.
type CannedGenerator struct{}

func (CannedGenerator) Generate(_ context.Context, kind model.GenerationKind, payload string) (string, error) {
	switch kind {
	case model.KindGeneralReply:
		return offlineGeneralReply, nil
	case model.KindPracticeQuestions:
		if strings.Contains(strings.ToLower(payload), "biology") {
			return biologyQuestions, nil
		}
		return fmt.Sprintf("**Sure!** Here are some practice questions for %s:\n\n"+
			"1. Describe the core concepts of this topic.\n"+
			"2. How does this subject relate to real-world applications?", strings.TrimSpace(payload)), nil
	case model.KindStressReliefTips:
		return offlineStressTip, nil
	case model.KindStudyPlanNarrative:
		return offlinePlanNarrative, nil
	}
	return "", fmt.Errorf("unknown generation kind %q", kind)
}

var (
	_ model.IntentClassifier = KeywordClassifier{}
	_ model.TextGenerator    = CannedGenerator{}
)
