package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// DefaultMaxTurns is used when a non-positive turn limit is configured.
const DefaultMaxTurns = 5

// HistoryMessages converts stored history into Eino messages. History alternates
// user message and assistant response, starting with the user.
func HistoryMessages(history []string) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history))
	for i, content := range history {
		if i%2 == 0 {
			msgs = append(msgs, schema.UserMessage(content))
		} else {
			msgs = append(msgs, schema.AssistantMessage(content, nil))
		}
	}
	return msgs
}

// BuildClassifierContext formats the last maxTurns exchanges of history for the
// intent classifier.
func BuildClassifierContext(history []string, maxTurns int) string {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	recentMessages := trimTail(HistoryMessages(history), maxTurns*2)

	var contextBuilder strings.Builder
	contextBuilder.WriteString("<conversation_context>\n")
	for _, msg := range recentMessages {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			contextBuilder.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			contextBuilder.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	contextBuilder.WriteString("</conversation_context>")
	return contextBuilder.String()
}

func trimTail(messages []*schema.Message, maxMessages int) []*schema.Message {
	if len(messages) <= maxMessages {
		return messages
	}
	return messages[len(messages)-maxMessages:]
}
