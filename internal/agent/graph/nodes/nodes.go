package nodes

import (
	"context"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/study-buddy/server/internal/agent/graph/conversations"
	"github.com/study-buddy/server/internal/agent/graph/parsers"
	"github.com/study-buddy/server/internal/agent/graph/prompts"
	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/metrics"
	logx "github.com/study-buddy/server/pkg/logger"
)

const (
	NodeIntentClassifier = "IntentClassifier"
	NodeTextGenerator    = "TextGenerator"
)

// LLMClassifier labels messages with a chat model.
type LLMClassifier struct {
	chatModel einomodel.BaseChatModel
	modelName string
	maxTurns  int
	recorder  metrics.Recorder
	handlers  []einocb.Handler
}

// NewLLMClassifier wraps chatModel. maxTurns bounds how much history reaches the prompt.
func NewLLMClassifier(chatModel einomodel.BaseChatModel, modelName string, maxTurns int, recorder metrics.Recorder, handlers ...einocb.Handler) *LLMClassifier {
	return &LLMClassifier{
		chatModel: chatModel,
		modelName: modelName,
		maxTurns:  maxTurns,
		recorder:  orNop(recorder),
		handlers:  handlers,
	}
}

// Classify implements model.IntentClassifier.
func (c *LLMClassifier) Classify(ctx context.Context, message string, history []string) (model.Intent, error) {
	conversationCtx := conversations.BuildClassifierContext(history, c.maxTurns)

	pctx := withCallbacks(ctx, NodeIntentClassifier, components.ComponentOfPrompt, c.handlers)
	msgs, err := prompts.RenderIntentMessages(pctx, message, conversationCtx)
	if err != nil {
		return "", err
	}

	mctx := withCallbacks(ctx, NodeIntentClassifier, components.ComponentOfChatModel, c.handlers)
	out, err := c.chatModel.Generate(mctx, msgs)
	if err != nil {
		return "", fmt.Errorf("classifier model: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("classifier model returned no message")
	}
	recordUsage(c.recorder, NodeIntentClassifier, c.modelName, out)

	intent, err := parsers.ParseIntent(out.Content)
	if err != nil {
		return "", err
	}
	logx.Debug().Str("node", NodeIntentClassifier).Str("intent", string(intent)).Msg("Intent classified")
	return intent, nil
}

// LLMGenerator produces replies with a chat model.
type LLMGenerator struct {
	chatModel einomodel.BaseChatModel
	modelName string
	recorder  metrics.Recorder
	handlers  []einocb.Handler
}

func NewLLMGenerator(chatModel einomodel.BaseChatModel, modelName string, recorder metrics.Recorder, handlers ...einocb.Handler) *LLMGenerator {
	return &LLMGenerator{
		chatModel: chatModel,
		modelName: modelName,
		recorder:  orNop(recorder),
		handlers:  handlers,
	}
}

// Generate implements model.TextGenerator. Blank model output is an error.
func (g *LLMGenerator) Generate(ctx context.Context, kind model.GenerationKind, payload string) (string, error) {
	pctx := withCallbacks(ctx, NodeTextGenerator, components.ComponentOfPrompt, g.handlers)
	msgs, err := prompts.RenderGenerationMessages(pctx, kind, payload)
	if err != nil {
		return "", err
	}

	mctx := withCallbacks(ctx, NodeTextGenerator, components.ComponentOfChatModel, g.handlers)
	out, err := g.chatModel.Generate(mctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%s model: %w", kind, err)
	}
	if out == nil {
		return "", fmt.Errorf("%s model returned no message", kind)
	}
	recordUsage(g.recorder, NodeTextGenerator, g.modelName, out)

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return "", fmt.Errorf("%s model returned empty content", kind)
	}
	return text, nil
}

var (
	_ model.IntentClassifier = (*LLMClassifier)(nil)
	_ model.TextGenerator    = (*LLMGenerator)(nil)
)
