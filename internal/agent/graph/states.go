package graph

import (
	"fmt"

	"github.com/study-buddy/server/internal/agent/model"
)

// State is a step of the per-message state machine.
type State string

const (
	StateStart        State = "START"
	StateClassify     State = "CLASSIFY"
	StateCollect      State = "COLLECT"
	StatePractice     State = "PRACTICE"
	StateStress       State = "STRESS"
	StateChat         State = "CHAT"
	StateAsk          State = "ASK"
	StateGeneratePlan State = "GENERATE_PLAN"
	StateEnd          State = "END"
)

// Transitions lists the allowed next states for each state.
var Transitions = map[State][]State{
	StateStart:        {StateClassify},
	StateClassify:     {StateCollect, StatePractice, StateStress, StateChat},
	StateCollect:      {StateAsk, StateGeneratePlan},
	StateAsk:          {StateEnd},
	StateGeneratePlan: {StateEnd},
	StatePractice:     {StateEnd},
	StateStress:       {StateEnd},
	StateChat:         {StateEnd},
}

// IsTerminal reports whether s produces the turn's response.
func IsTerminal(s State) bool {
	switch s {
	case StateAsk, StateGeneratePlan, StatePractice, StateStress, StateChat:
		return true
	}
	return false
}

// CanTransition reports whether to is an allowed successor of from.
func CanTransition(from, to State) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateForIntent picks the branch taken after classification. Anything
// unrecognised is general chat.
func StateForIntent(intent model.Intent) State {
	switch intent {
	case model.IntentStudyPlanning:
		return StateCollect
	case model.IntentPracticeQuestions:
		return StatePractice
	case model.IntentStressRelief:
		return StateStress
	default:
		return StateChat
	}
}

// Turn records what happened while handling one message.
type Turn struct {
	ConversationID string
	Intent         model.Intent
	// Classified is false when the pending-question override skipped the classifier.
	Classified bool
	Path       []State
	Response   string
}

// Terminal returns the state that produced the response, or "" before one is reached.
func (t *Turn) Terminal() State {
	for i := len(t.Path) - 1; i >= 0; i-- {
		if IsTerminal(t.Path[i]) {
			return t.Path[i]
		}
	}
	return ""
}

func (t *Turn) advance(next State) error {
	if len(t.Path) == 0 {
		if next != StateStart {
			return fmt.Errorf("invalid initial state %s", next)
		}
		t.Path = append(t.Path, next)
		return nil
	}
	cur := t.Path[len(t.Path)-1]
	if !CanTransition(cur, next) {
		return fmt.Errorf("invalid transition %s -> %s", cur, next)
	}
	t.Path = append(t.Path, next)
	return nil
}
