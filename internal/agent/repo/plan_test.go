package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/server/internal/agent/graph/planner"
	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/pkg/sqlite"
)

func newTestPlanRepo(t *testing.T) *SQLitePlanRepository {
	t.Helper()
	cfg := sqlite.Config{Path: sqlite.MemoryPath}
	db, err := cfg.Open(context.Background(), StudyPlansSchema...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLitePlanRepository(db)
}

func TestSQLitePlanRepository_PersistAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestPlanRepo(t)

	s := model.Slots{}.
		With(model.SlotEducationLevel, "College").
		With(model.SlotSubjectsCount, "5").
		With(model.SlotStudyHours, "4").
		With(model.SlotExamTimeline, "10").
		With(model.SlotStudyHabit, "last-minute")
	text := planner.RenderPlan(s)

	require.NoError(t, repo.PersistPlan(ctx, "c1", s, text))
	require.NoError(t, repo.PersistPlan(ctx, "c2", s, text))

	plans, err := repo.ListByConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	got := plans[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "c1", got.ConversationID)
	assert.Equal(t, text, got.Plan)
	assert.Equal(t, string(planner.ModeCritical), got.Mode)
	assert.Equal(t, "last-minute", got.StudentData["study_habit"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLitePlanRepository_UnparsableSlotsStillStored(t *testing.T) {
	ctx := context.Background()
	repo := newTestPlanRepo(t)

	s := model.Slots{}.With(model.SlotExamTimeline, "soon")
	require.NoError(t, repo.PersistPlan(ctx, "c1", s, planner.FallbackText))

	plans, err := repo.ListByConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Empty(t, plans[0].Mode)
	assert.Equal(t, planner.FallbackText, plans[0].Plan)
}

func TestSQLitePlanRepository_ClosedDBFails(t *testing.T) {
	cfg := sqlite.Config{Path: sqlite.MemoryPath}
	db, err := cfg.Open(context.Background(), StudyPlansSchema...)
	require.NoError(t, err)
	repo := NewSQLitePlanRepository(db)
	require.NoError(t, db.Close())

	err = repo.PersistPlan(context.Background(), "c1", model.Slots{}, "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store operation failed")
}

func TestLogPlanRepository(t *testing.T) {
	assert.NoError(t, LogPlanRepository{}.PersistPlan(context.Background(), "c1", model.Slots{}, "plan"))
}
