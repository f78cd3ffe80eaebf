package model

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots_WithDoesNotMutateReceiver(t *testing.T) {
	var s Slots
	s2 := s.With(SlotStudyHours, "3")

	assert.False(t, s.Has(SlotStudyHours))
	v, ok := s2.Get(SlotStudyHours)
	require.True(t, ok)
	assert.Equal(t, "3", v)

	assert.Equal(t, s2, s2.With("unknown_slot", "x"))
}

func TestSlots_Map(t *testing.T) {
	s := Slots{}.With(SlotEducationLevel, "College").With(SlotStudyHabit, "")
	assert.Equal(t, map[string]string{
		"education_level": "College",
		"study_habit":     "",
	}, s.Map())
}

func TestParseIntent(t *testing.T) {
	in, ok := ParseIntent("stress_relief")
	assert.True(t, ok)
	assert.Equal(t, IntentStressRelief, in)

	in, ok = ParseIntent("time_management")
	assert.False(t, ok)
	assert.Equal(t, IntentGeneralChat, in)
}

func TestConversationState_CloneIsDeep(t *testing.T) {
	q := "How many subjects are you focusing on?"
	orig := NewConversationState("c1")
	orig.History = append(orig.History, "hi")
	orig.Slots = orig.Slots.With(SlotEducationLevel, "College")
	orig.PendingQuestion = &q

	cp := orig.Clone()
	cp.History[0] = "changed"
	*cp.PendingQuestion = "other"
	cp.Slots = cp.Slots.With(SlotEducationLevel, "High School")

	assert.Equal(t, "hi", orig.History[0])
	assert.Equal(t, q, *orig.PendingQuestion)
	v, _ := orig.Slots.Get(SlotEducationLevel)
	assert.Equal(t, "College", v)
}

func TestConversationState_JSONRoundTripKeepsPresence(t *testing.T) {
	st := NewConversationState("c1")
	st.Slots = st.Slots.With(SlotSubjectsCount, "5")

	b, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "education_level")

	var back ConversationState
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Slots.Has(SlotSubjectsCount))
	assert.False(t, back.Slots.Has(SlotEducationLevel))
	assert.Nil(t, back.PendingQuestion)
}

func TestFallbackText(t *testing.T) {
	assert.Equal(t, "Take a deep breath. You've got this.", FallbackText(KindStressReliefTips))
	assert.Equal(t, FallbackText(KindGeneralReply), FallbackText("nope"))
}

func TestComputeCost(t *testing.T) {
	_, ok := ComputeCost("gemini-2.5-flash", nil)
	assert.False(t, ok)

	c, ok := ComputeCost("gemini-2.5-flash", &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000})
	require.True(t, ok)
	assert.InDelta(t, 0.30, c.InputCost, 1e-9)
	assert.InDelta(t, 2.50, c.OutputCost, 1e-9)
	assert.InDelta(t, 2.80, c.TotalCost, 1e-9)

	unknown, _ := ComputeCost("mystery", &schema.TokenUsage{PromptTokens: 10})
	assert.Zero(t, unknown.TotalCost)
}
