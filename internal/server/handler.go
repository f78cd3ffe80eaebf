package server

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/study-buddy/server/internal/agent/graph"
	"github.com/study-buddy/server/internal/agent/model"
	errx "github.com/study-buddy/server/internal/core/error"
	logx "github.com/study-buddy/server/pkg/logger"
)

// DefaultConversationID is used when a request names no conversation.
const DefaultConversationID = "default_thread"

const healthMessage = "Study Buddy API is running"

type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversation_id" validate:"omitempty,max=256"`
	// ThreadID is accepted for older clients.
	ThreadID string `json:"thread_id" validate:"omitempty,max=256"`
}

func (r ChatRequest) conversationID() string {
	if id := strings.TrimSpace(r.ConversationID); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.ThreadID); id != "" {
		return id
	}
	return DefaultConversationID
}

type ChatResponse struct {
	Response string `json:"response"`
}

type chatHandler struct {
	runner   graph.Runner
	validate *validator.Validate
}

func (h *chatHandler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": validationDetail(err)})
	}

	id := req.conversationID()
	reply, err := h.runner.Invoke(c.UserContext(), model.QueryInput{ConversationID: id, Query: req.Message})
	if err != nil {
		status := errx.StatusOf(err)
		if status >= fiber.StatusInternalServerError {
			status = fiber.StatusInternalServerError
			logx.Error().Err(err).Str("conversation_id", id).Msg("chat turn failed")
		}
		return c.Status(status).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(ChatResponse{Response: reply})
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "message": healthMessage})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " is too long"
	}
	return fe.Error()
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
