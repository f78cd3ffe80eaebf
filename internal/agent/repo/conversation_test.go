package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/server/internal/agent/model"
	pkgredis "github.com/study-buddy/server/pkg/redis"
)

// newTestRedisRepo needs a reachable server in REDIS_URL; the test is skipped otherwise.
func newTestRedisRepo(t *testing.T, ttl time.Duration) *RedisConversationRepository {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	cfg := pkgredis.Config{URL: url, ReadTimeout: 3, WriteTimeout: 3, DialTimeout: 5}
	rdb, err := cfg.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewRedisConversationRepository(rdb, ttl)
}

func TestRedisConversationRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRedisRepo(t, time.Minute)
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	fresh, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.IntentNone, fresh.Intent)

	q := "How many subjects are you focusing on?"
	st := model.NewConversationState(id)
	st.History = []string{"I need a study plan", "College"}
	st.Intent = model.IntentStudyPlanning
	st.Slots = st.Slots.With(model.SlotEducationLevel, "College")
	st.PendingQuestion = &q
	require.NoError(t, repo.Save(ctx, st))

	got, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st.History, got.History)
	assert.Equal(t, model.IntentStudyPlanning, got.Intent)
	require.NotNil(t, got.PendingQuestion)
	assert.Equal(t, q, *got.PendingQuestion)
	assert.True(t, got.Slots.Has(model.SlotEducationLevel))
	assert.False(t, got.Slots.Has(model.SlotStudyHours))

	require.NoError(t, repo.Delete(ctx, id))
	gone, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, gone.History)
}

func TestRedisConversationRepository_Key(t *testing.T) {
	repo := NewRedisConversationRepository(nil, 0)
	assert.Equal(t, "conversation:abc:state", repo.conversationKey("abc"))
}
