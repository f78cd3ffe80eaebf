package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/study-buddy/server/internal/agent/model"
	errx "github.com/study-buddy/server/internal/core/error"
	logx "github.com/study-buddy/server/pkg/logger"
)

// RedisConversationRepository keeps each conversation's state as one JSON value.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationRepository) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:state", conversationID)
}

func (r *RedisConversationRepository) Load(ctx context.Context, conversationID string) (*model.ConversationState, error) {
	key := r.conversationKey(conversationID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewConversationState(conversationID), nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation state from redis")
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to unmarshal conversation state")
		return nil, errx.WrapStore(fmt.Errorf("unmarshal conversation state: %w", err))
	}
	if state.History == nil {
		state.History = []string{}
	}
	return &state, nil
}

func (r *RedisConversationRepository) Save(ctx context.Context, state *model.ConversationState) error {
	if state == nil {
		return errx.WrapStore(fmt.Errorf("conversation state is nil"))
	}
	b, err := json.Marshal(state)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", state.ConversationID).Msg("failed to marshal conversation state")
		return errx.WrapStore(fmt.Errorf("marshal conversation state: %w", err))
	}
	key := r.conversationKey(state.ConversationID)

	// SET with expiry extends the TTL on every touch; zero keeps the key forever
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save conversation state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) Delete(ctx context.Context, conversationID string) error {
	key := r.conversationKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationStore = (*RedisConversationRepository)(nil)
