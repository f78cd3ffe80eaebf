// Package planner turns collected slots into a rule-based study plan.
package planner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/study-buddy/server/internal/agent/model"
)

// FallbackText is returned when a numeric slot cannot be parsed.
const FallbackText = "I had trouble understanding your numbers. However, generally, consistency is key! Try to study a little every day."

const closingLine = "\nGood luck! You've got this. 🚀"

const (
	defaultDays     = 30
	defaultHours    = 2.0
	defaultSubjects = 1
	defaultHabit    = "consistent"
)

// ErrUnparsable reports a numeric slot that is not a number.
var ErrUnparsable = errors.New("unparsable numeric slot")

// Mode is the timeline strategy.
type Mode string

const (
	ModeCritical Mode = "Critical Exam Mode"
	ModeBalanced Mode = "Balanced Prep Mode"
	ModeLongTerm Mode = "Long-Term Growth Mode"
)

// Plan is the structured result behind the rendered text.
type Plan struct {
	EducationLevel string
	DaysRemaining  int
	Hours          float64
	Subjects       int
	Habit          string

	Mode           Mode
	SessionLength  int // minutes
	Sessions       int
	RotateSubjects bool
	HabitFix       bool
}

// Build parses the slots and applies the threshold rules.
func Build(s model.Slots) (Plan, error) {
	p := Plan{
		DaysRemaining: defaultDays,
		Hours:         defaultHours,
		Subjects:      defaultSubjects,
		Habit:         defaultHabit,
	}
	if v, ok := s.Get(model.SlotEducationLevel); ok {
		p.EducationLevel = v
	}

	if v, ok := s.Get(model.SlotExamTimeline); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Plan{}, fmt.Errorf("%w: exam_timeline %q", ErrUnparsable, v)
		}
		p.DaysRemaining = n
	}
	if v, ok := s.Get(model.SlotStudyHours); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Plan{}, fmt.Errorf("%w: study_hours %q", ErrUnparsable, v)
		}
		p.Hours = f
	}
	if v, ok := s.Get(model.SlotSubjectsCount); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Plan{}, fmt.Errorf("%w: subjects_count %q", ErrUnparsable, v)
		}
		p.Subjects = n
	}
	if v, ok := s.Get(model.SlotStudyHabit); ok {
		p.Habit = strings.ToLower(v)
	}

	switch {
	case p.DaysRemaining < 15:
		p.Mode = ModeCritical
	case p.DaysRemaining < 45:
		p.Mode = ModeBalanced
	default:
		p.Mode = ModeLongTerm
	}

	p.SessionLength = 30
	if p.Hours >= 3 {
		p.SessionLength = 45
	}
	p.Sessions = int(math.Floor(p.Hours * 60 / float64(p.SessionLength)))
	p.RotateSubjects = p.Subjects > 4
	p.HabitFix = strings.Contains(p.Habit, "irregular") || strings.Contains(p.Habit, "last-minute")

	return p, nil
}

// Text renders the plan as newline-joined blocks.
func (p Plan) Text() string {
	level := p.EducationLevel
	if level == "" {
		level = "your level"
	}

	lines := []string{fmt.Sprintf("Here is your personalized study guidance for %s:", level)}

	switch p.Mode {
	case ModeCritical:
		lines = append(lines,
			"\n**🚨 Critical Exam Mode**",
			"- **Focus**: 70% Revision / 30% New Topics.",
			"- **Technique**: Use Active Recall and Past Papers immediately.",
		)
	case ModeBalanced:
		lines = append(lines,
			"\n**⚠️ Balanced Prep Mode**",
			"- **Focus**: Finish syllabus in 2 weeks, then switch to revision.",
			"- **Technique**: Try the Pomodoro technique (25m work / 5m break).",
		)
	default:
		lines = append(lines,
			"\n**🌱 Long-Term Growth Mode**",
			"- **Focus**: Deep understanding of concepts.",
			"- **Technique**: Spaced Repetition to ensure long-term retention.",
		)
	}

	lines = append(lines,
		fmt.Sprintf("\n**📅 Daily Schedule (%s hours/day)**", formatHours(p.Hours)),
		fmt.Sprintf("- Split your time into %d sessions of %d minutes each.", p.Sessions, p.SessionLength),
	)
	if p.RotateSubjects {
		lines = append(lines, "- **Subject Rotation**: Study 2 different subjects per day to keep things fresh.")
	} else {
		lines = append(lines, "- **Deep Dive**: Focus on 1 major subject per day.")
	}

	if p.HabitFix {
		lines = append(lines,
			"\n**💡 Productivity Fix**",
			"- Since your habit is irregular, start with just 15 minutes today. Do not break the chain!",
			"- Set a fixed alarm for study time, even if you don't feel like it.",
		)
	}

	lines = append(lines, closingLine)
	return strings.Join(lines, "\n")
}

// RenderPlan is Build followed by Text, degrading to FallbackText on parse errors.
func RenderPlan(s model.Slots) string {
	p, err := Build(s)
	if err != nil {
		return FallbackText
	}
	return p.Text()
}

// formatHours prints whole numbers with one decimal ("4.0") and keeps fractions as-is ("2.5").
func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
