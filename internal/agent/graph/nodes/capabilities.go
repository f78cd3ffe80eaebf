package nodes

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/study-buddy/server/internal/agent/graph/observers"
	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/metrics"
	logx "github.com/study-buddy/server/pkg/logger"
)

type CapabilitiesConfig struct {
	ChatModelConfig
	ClassifierMaxTurns int
	Recorder           metrics.Recorder
}

// Capabilities is the classifier/generator pair handed to the router.
type Capabilities struct {
	Classifier model.IntentClassifier
	Generator  model.TextGenerator
	// Offline is true when the keyword classifier and canned replies are in use.
	Offline bool
}

// NewCapabilities builds Gemini-backed capabilities, or the offline pair when no API key is set.
func NewCapabilities(ctx context.Context, cfg CapabilitiesConfig) (*Capabilities, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logx.Warn().Msg("GEMINI_API_KEY not set - using offline keyword classifier and canned replies")
		return &Capabilities{
			Classifier: KeywordClassifier{},
			Generator:  CannedGenerator{},
			Offline:    true,
		}, nil
	}

	models, err := NewChatModels(ctx, cfg.ChatModelConfig)
	if err != nil {
		return nil, err
	}
	handlers := []einocb.Handler{observers.NewAllCallbacks()}

	logx.Info().
		Str("classifier_model", models.ClassifierModelName).
		Str("response_model", models.ResponseModelName).
		Msg("Gemini capabilities initialized")

	return &Capabilities{
		Classifier: NewLLMClassifier(models.Classifier, models.ClassifierModelName, cfg.ClassifierMaxTurns, cfg.Recorder, handlers...),
		Generator:  NewLLMGenerator(models.Response, models.ResponseModelName, cfg.Recorder, handlers...),
	}, nil
}
