package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/study-buddy/server/internal/agent/graph/planner"
	"github.com/study-buddy/server/internal/agent/model"
	errx "github.com/study-buddy/server/internal/core/error"
	logx "github.com/study-buddy/server/pkg/logger"
)

// StudyPlansSchema creates the table used by SQLitePlanRepository.
var StudyPlansSchema = []string{
	`CREATE TABLE IF NOT EXISTS study_plans (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		student_data    TEXT NOT NULL,
		mode            TEXT NOT NULL DEFAULT '',
		plan            TEXT NOT NULL,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_study_plans_conversation ON study_plans(conversation_id)`,
}

// StoredPlan is one row of study_plans.
type StoredPlan struct {
	ID             string
	ConversationID string
	StudentData    map[string]string
	Mode           string
	Plan           string
	CreatedAt      time.Time
}

// SQLitePlanRepository writes rendered plans to SQLite.
type SQLitePlanRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLitePlanRepository(db *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{db: db, now: time.Now}
}

func (r *SQLitePlanRepository) PersistPlan(ctx context.Context, conversationID string, s model.Slots, planText string) error {
	data, err := json.Marshal(s.Map())
	if err != nil {
		return errx.WrapStore(fmt.Errorf("marshal student data: %w", err))
	}
	mode := ""
	if p, err := planner.Build(s); err == nil {
		mode = string(p.Mode)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO study_plans (id, conversation_id, student_data, mode, plan, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), conversationID, string(data), mode, planText, r.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to insert study plan")
		return errx.WrapStore(fmt.Errorf("insert study plan: %w", err))
	}
	return nil
}

// ListByConversation returns stored plans for a conversation, oldest first.
func (r *SQLitePlanRepository) ListByConversation(ctx context.Context, conversationID string) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, student_data, mode, plan, created_at FROM study_plans WHERE conversation_id = ? ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, errx.WrapStore(fmt.Errorf("query study plans: %w", err))
	}
	defer rows.Close()

	var out []StoredPlan
	for rows.Next() {
		var (
			p       StoredPlan
			data    string
			created string
		)
		if err := rows.Scan(&p.ID, &p.ConversationID, &data, &p.Mode, &p.Plan, &created); err != nil {
			return nil, errx.WrapStore(fmt.Errorf("scan study plan: %w", err))
		}
		if err := json.Unmarshal([]byte(data), &p.StudentData); err != nil {
			return nil, errx.WrapStore(fmt.Errorf("unmarshal student data: %w", err))
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errx.WrapStore(fmt.Errorf("parse created_at: %w", err))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

// LogPlanRepository only logs plans; used when no database is configured.
type LogPlanRepository struct{}

func (LogPlanRepository) PersistPlan(_ context.Context, conversationID string, s model.Slots, planText string) error {
	logx.Info().
		Str("conversation_id", conversationID).
		Interface("student_data", s.Map()).
		Int("plan_length", len(planText)).
		Msg("study plan generated")
	return nil
}

var (
	_ model.PlanSink = (*SQLitePlanRepository)(nil)
	_ model.PlanSink = LogPlanRepository{}
)
