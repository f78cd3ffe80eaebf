package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/intent_prompt.txt
var intentSystemPrompt string

const intentUserTemplate = `{{.Context}}
<current_message_to_analyze>
UserMessage({{.Message}})
</current_message_to_analyze>`

var intentTemplate = prompt.FromMessages(
	schema.GoTemplate,
	schema.SystemMessage(intentSystemPrompt),
	schema.UserMessage(intentUserTemplate),
)

// RenderIntentMessages builds the classifier input for message, with conversationCtx
// holding the already formatted recent history.
// Rendering goes through the Eino prompt component so prompt callbacks fire.
func RenderIntentMessages(ctx context.Context, message, conversationCtx string) ([]*schema.Message, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("intent prompt: message is empty")
	}
	msgs, err := intentTemplate.Format(ctx, map[string]any{
		"Context": conversationCtx,
		"Message": message,
	})
	if err != nil {
		return nil, fmt.Errorf("intent prompt render: %w", err)
	}
	if len(msgs) != 2 {
		return nil, fmt.Errorf("intent prompt render: expected 2 messages, got %d", len(msgs))
	}
	return msgs, nil
}
