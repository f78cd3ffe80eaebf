package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	Store string        `envconfig:"CONVERSATION_STORE" default:"memory" validate:"oneof=memory redis"`
	TTL   time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	// CapabilityTimeout bounds every classifier/generator call.
	CapabilityTimeout time.Duration `envconfig:"CONVERSATION_CAPABILITY_TIMEOUT" default:"20s" validate:"gt=0"`
	Classifier        struct {
		MaxTurns int `envconfig:"CONVERSATION_CLASSIFIER_MAX_TURNS" default:"5"`
	}
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"64"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

type PlanStoreConfig struct {
	Kind           string        `envconfig:"PLAN_STORE" default:"log" validate:"oneof=log sqlite"`
	PersistTimeout time.Duration `envconfig:"PLAN_PERSIST_TIMEOUT" default:"5s"`
}
