package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/study-buddy/server/internal/agent/model"
)

var (
	//go:embed template/general_reply.txt
	generalReplyPrompt string
	//go:embed template/practice_questions.txt
	practiceQuestionsPrompt string
	//go:embed template/stress_relief_tips.txt
	stressReliefPrompt string
	//go:embed template/study_plan_narrative.txt
	planNarrativePrompt string
)

var generationUserTemplate = map[model.GenerationKind]string{
	model.KindGeneralReply:       `User says: "{{.Payload}}"`,
	model.KindPracticeQuestions:  `Topic: "{{.Payload}}"`,
	model.KindStressReliefTips:   `I'm feeling: "{{.Payload}}"`,
	model.KindStudyPlanNarrative: "Student profile:\n{{.Payload}}",
}

var generationTemplates = map[model.GenerationKind]*prompt.DefaultChatTemplate{
	model.KindGeneralReply:       newGenerationTemplate(model.KindGeneralReply, generalReplyPrompt),
	model.KindPracticeQuestions:  newGenerationTemplate(model.KindPracticeQuestions, practiceQuestionsPrompt),
	model.KindStressReliefTips:   newGenerationTemplate(model.KindStressReliefTips, stressReliefPrompt),
	model.KindStudyPlanNarrative: newGenerationTemplate(model.KindStudyPlanNarrative, planNarrativePrompt),
}

func newGenerationTemplate(kind model.GenerationKind, system string) *prompt.DefaultChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(system),
		schema.UserMessage(generationUserTemplate[kind]),
	)
}

// RenderGenerationMessages renders the system and user messages for one generation kind.
func RenderGenerationMessages(ctx context.Context, kind model.GenerationKind, payload string) ([]*schema.Message, error) {
	tpl, ok := generationTemplates[kind]
	if !ok {
		return nil, fmt.Errorf("unknown generation kind %q", kind)
	}
	msgs, err := tpl.Format(ctx, map[string]any{"Payload": payload})
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", kind, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", kind)
	}
	return msgs, nil
}

// PlanProfile formats collected slots as the study_plan_narrative payload.
func PlanProfile(s model.Slots) string {
	get := func(name model.SlotName) string {
		if v, ok := s.Get(name); ok {
			return v
		}
		return "Unknown"
	}
	return fmt.Sprintf(
		"- Education Level: %s\n- Number of Subjects: %s\n- Available Study Hours/Day: %s\n- Time until Exams: %s\n- Study Habit: %s",
		get(model.SlotEducationLevel),
		get(model.SlotSubjectsCount),
		get(model.SlotStudyHours),
		get(model.SlotExamTimeline),
		get(model.SlotStudyHabit),
	)
}
