package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/study-buddy/server/internal/agent/graph/planner"
	"github.com/study-buddy/server/internal/agent/graph/slots"
	"github.com/study-buddy/server/internal/agent/model"
	errx "github.com/study-buddy/server/internal/core/error"
	"github.com/study-buddy/server/internal/metrics"
	logx "github.com/study-buddy/server/pkg/logger"
)

// Router drives one state transition sequence per incoming message.
// Turns for the same conversation are serialised; different conversations run in parallel.
type Router struct {
	store      model.ConversationStore
	classifier model.IntentClassifier
	generator  model.TextGenerator
	sink       model.PlanSink
	recorder   metrics.Recorder

	capabilityTimeout time.Duration
	persistTimeout    time.Duration

	locks    *keyedMutex
	inflight sync.WaitGroup
	now      func() time.Time
}

// Invoke implements Runner.
func (r *Router) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	turn, err := r.Handle(ctx, in)
	if err != nil {
		return "", err
	}
	return turn.Response, nil
}

// HandleMessage is Invoke with positional arguments.
func (r *Router) HandleMessage(ctx context.Context, conversationID, message string) (string, error) {
	return r.Invoke(ctx, model.QueryInput{ConversationID: conversationID, Query: message})
}

// Handle runs a full turn and returns its record. Capability failures never
// produce an error; only invalid input and store failures do.
func (r *Router) Handle(ctx context.Context, in model.QueryInput) (*Turn, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, errx.BadRequest(ErrEmptyMessage)
	}
	start := r.now()

	unlock := r.locks.Lock(in.ConversationID)
	defer unlock()

	stored, err := r.store.Load(ctx, in.ConversationID)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to load conversation state")
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	state := stored.Clone()
	if state == nil {
		state = model.NewConversationState(in.ConversationID)
	}
	state.ConversationID = in.ConversationID

	turn := &Turn{ConversationID: in.ConversationID}
	if err := turn.advance(StateStart); err != nil {
		return nil, err
	}
	state.History = append(state.History, in.Query)

	if err := turn.advance(StateClassify); err != nil {
		return nil, err
	}
	state.Intent = r.resolveIntent(ctx, state, in.Query, turn)
	turn.Intent = state.Intent

	branch := StateForIntent(state.Intent)
	if err := turn.advance(branch); err != nil {
		return nil, err
	}

	firstPlan := false
	switch branch {
	case StateCollect:
		updated, next := slots.Collect(state.Slots, state.PendingQuestion, in.Query)
		state.Slots = updated
		state.PendingQuestion = next
		if next != nil {
			if err := turn.advance(StateAsk); err != nil {
				return nil, err
			}
			turn.Response = *next
			break
		}
		if err := turn.advance(StateGeneratePlan); err != nil {
			return nil, err
		}
		turn.Response = planner.RenderPlan(state.Slots)
		firstPlan = !state.PlanGenerated
		state.PlanGenerated = true
	case StatePractice:
		turn.Response = r.generate(ctx, in.ConversationID, model.KindPracticeQuestions, in.Query)
	case StateStress:
		turn.Response = r.generate(ctx, in.ConversationID, model.KindStressReliefTips, in.Query)
	default:
		turn.Response = r.generate(ctx, in.ConversationID, model.KindGeneralReply, in.Query)
	}

	state.History = append(state.History, turn.Response)
	if err := turn.advance(StateEnd); err != nil {
		return nil, err
	}
	state.UpdatedAt = r.now().UTC()

	// the turn's outcome is committed even when the caller has gone away
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.store.Save(saveCtx, state); err != nil {
		logx.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to save conversation state")
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	if firstPlan {
		r.persistPlan(ctx, in.ConversationID, state.Slots, turn.Response)
	}

	terminal := turn.Terminal()
	r.recorder.ObserveTurn(string(turn.Intent), string(terminal), turn.Classified, r.now().Sub(start))
	logx.Debug().
		Str("conversation_id", in.ConversationID).
		Str("intent", string(turn.Intent)).
		Str("state", string(terminal)).
		Bool("classified", turn.Classified).
		Msg("Turn completed")

	return turn, nil
}

// resolveIntent applies the pending-question override before asking the classifier.
func (r *Router) resolveIntent(ctx context.Context, state *model.ConversationState, message string, turn *Turn) model.Intent {
	if state.PendingQuestion != nil {
		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Str("pending_question", *state.PendingQuestion).
			Msg("Pending question - skipping classifier")
		return model.IntentStudyPlanning
	}

	turn.Classified = true
	prior := state.History[:len(state.History)-1]

	cctx, cancel := context.WithTimeout(ctx, r.capabilityTimeout)
	defer cancel()

	began := r.now()
	intent, err := r.classifier.Classify(cctx, message, prior)
	r.recorder.ObserveCapability("classifier", "intent", r.now().Sub(began))
	if err != nil {
		r.recorder.IncCapabilityFailure("classifier", "intent")
		logx.Warn().Err(errx.WrapCapability(err)).
			Str("conversation_id", state.ConversationID).
			Msg("Intent classification failed - defaulting to general chat")
		return model.IntentGeneralChat
	}
	if _, ok := model.ParseIntent(string(intent)); !ok {
		logx.Warn().
			Str("conversation_id", state.ConversationID).
			Str("intent", string(intent)).
			Msg("Unknown intent label - defaulting to general chat")
		return model.IntentGeneralChat
	}
	return intent
}

// generate calls the text generator under the capability timeout and falls back on failure.
func (r *Router) generate(ctx context.Context, conversationID string, kind model.GenerationKind, payload string) string {
	gctx, cancel := context.WithTimeout(ctx, r.capabilityTimeout)
	defer cancel()

	began := r.now()
	out, err := r.generator.Generate(gctx, kind, payload)
	r.recorder.ObserveCapability("generator", string(kind), r.now().Sub(began))
	if err == nil && strings.TrimSpace(out) == "" {
		err = fmt.Errorf("empty %s output", kind)
	}
	if err != nil {
		r.recorder.IncCapabilityFailure("generator", string(kind))
		logx.Warn().Err(errx.WrapCapability(err)).
			Str("conversation_id", conversationID).
			Str("kind", string(kind)).
			Msg("Generation failed - using fallback")
		return model.FallbackText(kind)
	}
	return out
}

// persistPlan hands the plan to the sink without blocking the response.
func (r *Router) persistPlan(ctx context.Context, conversationID string, s model.Slots, plan string) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.persistTimeout)
		defer cancel()

		if err := r.sink.PersistPlan(pctx, conversationID, s, plan); err != nil {
			r.recorder.ObservePlanPersist(false)
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to persist study plan")
			return
		}
		r.recorder.ObservePlanPersist(true)
		logx.Debug().Str("conversation_id", conversationID).Msg("Study plan persisted")
	}()
}

// Close waits for background plan writes, bounded by ctx.
func (r *Router) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
