package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/metrics"
	logx "github.com/study-buddy/server/pkg/logger"
)

// Runner executes one conversation turn for the transport layer.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything the Router is composed from.
type Config struct {
	Store        model.ConversationStore
	Classifier   model.IntentClassifier
	Generator    model.TextGenerator
	PlanSink     model.PlanSink
	Recorder     metrics.Recorder
	Conversation model.ConversationConfig
	PlanStore    model.PlanStoreConfig
}

const (
	defaultCapabilityTimeout = 20 * time.Second
	defaultPersistTimeout    = 5 * time.Second
	saveTimeout              = 5 * time.Second
)

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// NewRouter validates cfg and returns a ready Router.
func NewRouter(cfg Config) (*Router, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}
	if cfg.Classifier == nil || cfg.Generator == nil {
		return nil, fmt.Errorf("capabilities are not properly initialized")
	}
	if cfg.PlanSink == nil {
		return nil, fmt.Errorf("plan sink is nil")
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}

	capTimeout := cfg.Conversation.CapabilityTimeout
	if capTimeout <= 0 {
		capTimeout = defaultCapabilityTimeout
	}
	persistTimeout := cfg.PlanStore.PersistTimeout
	if persistTimeout <= 0 {
		persistTimeout = defaultPersistTimeout
	}

	logx.Debug().
		Dur("capability_timeout", capTimeout).
		Dur("persist_timeout", persistTimeout).
		Msg("Conversation router built successfully")

	return &Router{
		store:             cfg.Store,
		classifier:        cfg.Classifier,
		generator:         cfg.Generator,
		sink:              cfg.PlanSink,
		recorder:          cfg.Recorder,
		capabilityTimeout: capTimeout,
		persistTimeout:    persistTimeout,
		locks:             newKeyedMutex(),
		now:               time.Now,
	}, nil
}

var _ Runner = (*Router)(nil)
