package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/study-buddy/server/internal/agent/model"
)

// MemoryConversationRepository keeps conversation state in process with idle expiry.
// Stored values are cloned on the way in and out so callers never share state.
type MemoryConversationRepository struct {
	cache *cache.Cache
}

// NewMemoryConversationRepository expires conversations idle for ttl. A zero
// ttl keeps them until the process exits.
func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	exp := ttl
	cleanup := ttl / 2
	if ttl <= 0 {
		exp = cache.NoExpiration
		cleanup = 0
	}
	return &MemoryConversationRepository{cache: cache.New(exp, cleanup)}
}

func (r *MemoryConversationRepository) Load(_ context.Context, conversationID string) (*model.ConversationState, error) {
	if x, found := r.cache.Get(conversationID); found {
		return x.(*model.ConversationState).Clone(), nil
	}
	return model.NewConversationState(conversationID), nil
}

func (r *MemoryConversationRepository) Save(_ context.Context, state *model.ConversationState) error {
	r.cache.Set(state.ConversationID, state.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *MemoryConversationRepository) Delete(_ context.Context, conversationID string) error {
	r.cache.Delete(conversationID)
	return nil
}

// Count returns the number of live conversations.
func (r *MemoryConversationRepository) Count() int {
	return r.cache.ItemCount()
}

var _ model.ConversationStore = (*MemoryConversationRepository)(nil)
