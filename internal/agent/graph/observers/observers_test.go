package observers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/server/internal/core"
	logx "github.com/study-buddy/server/pkg/logger"
)

func TestModelCallbacksLogThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	logx.Init(logx.LoggerOpts{Environment: core.Development, Output: &buf})

	info := &einocb.RunInfo{Name: "IntentClassifier", Type: "Gemini", Component: components.ComponentOfChatModel}
	ctx := einocb.InitCallbacks(context.Background(), info, NewAllCallbacks())

	ctx = einocb.OnStart(ctx, &model.CallbackInput{Messages: []*schema.Message{
		schema.SystemMessage("system"),
		schema.UserMessage("make me a plan"),
	}})
	einocb.OnEnd(ctx, &model.CallbackOutput{
		Message:    schema.AssistantMessage("study_planning", nil),
		TokenUsage: &model.TokenUsage{PromptTokens: 12, CompletionTokens: 2},
	})
	einocb.OnError(ctx, errors.New("boom"))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Model call started")
	assert.Contains(t, out, "make me a plan")
	assert.Contains(t, out, "Model call finished")
	assert.Contains(t, out, "study_planning")
	assert.Contains(t, out, "Model call failed")
}

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage(" first "),
		nil,
		schema.AssistantMessage("reply", nil),
		schema.UserMessage(" second "),
		schema.AssistantMessage("reply 2", nil),
	}
	assert.Equal(t, "second", lastUserContent(msgs))
	assert.Equal(t, "", lastUserContent(nil))
}
