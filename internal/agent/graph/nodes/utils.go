package nodes

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/schema"

	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/metrics"
	logx "github.com/study-buddy/server/pkg/logger"
)

const callbackType = "Gemini"

func orNop(r metrics.Recorder) metrics.Recorder {
	if r == nil {
		return metrics.Nop{}
	}
	return r
}

// withCallbacks attaches the observer handlers so Eino components emit lifecycle events.
func withCallbacks(ctx context.Context, name string, component components.Component, handlers []einocb.Handler) context.Context {
	if len(handlers) == 0 {
		return ctx
	}
	return einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      name,
		Type:      callbackType,
		Component: component,
	}, handlers...)
}

// recordUsage computes, logs and exports the usage cost of one model call.
func recordUsage(recorder metrics.Recorder, node, modelName string, out *schema.Message) {
	if out == nil || out.ResponseMeta == nil {
		return
	}
	cost, ok := model.ComputeCost(modelName, out.ResponseMeta.Usage)
	if !ok {
		return
	}
	logx.Debug().
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", cost.PromptTokens).
		Int("completion_tokens", cost.CompletionTokens).
		Int("total_tokens", cost.TotalTokens).
		Float64("input_cost_usd", cost.InputCost).
		Float64("output_cost_usd", cost.OutputCost).
		Float64("total_cost_usd", cost.TotalCost).
		Msg("LLM usage")
	recorder.ObserveLLMUsage(modelName, cost.PromptTokens, cost.CompletionTokens, cost.TotalCost)
}
