package schemas

import (
	"context"
)

// -- LLM Schemas & Interface --

// ModelTier selects between a cheap, fast model and a slower, stronger one.
type ModelTier string

const (
	TierFast     ModelTier = "fast"
	TierPowerful ModelTier = "powerful"
)

// SchemaType names the JSON type of a ResponseSchema node.
type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaNumber  SchemaType = "number"
	SchemaBoolean SchemaType = "boolean"
)

// ResponseSchema declares the structured output shape a model must produce.
// It is provider neutral; each client translates it to its own schema type.
type ResponseSchema struct {
	Type       SchemaType                 `json:"type"`
	Properties map[string]*ResponseSchema `json:"properties,omitempty"`
	Items      *ResponseSchema            `json:"items,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

// GenerationOptions provides detailed parameters to control the text generation
// process of the LLM, such as creativity (temperature) and output format.
type GenerationOptions struct {
	Temperature     float64         `json:"temperature"`       // Controls randomness. Lower is more deterministic.
	ForceJSONFormat bool            `json:"force_json_format"` // If true, forces the model to output valid JSON.
	ResponseSchema  *ResponseSchema `json:"response_schema,omitempty"`
}

// GenerationRequest encapsulates a complete request to the LLM, including the
// system and user prompts, the desired model tier, and generation options.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Tier         ModelTier         `json:"tier"`
	Options      GenerationOptions `json:"options"`
}

// LLMClient defines a standard interface for interacting with a Large Language
// Model, abstracting the specifics of the underlying provider (e.g., Gemini).
type LLMClient interface {
	// Generate produces a text completion based on the provided request.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Close cleans up any resources held by the client.
	Close() error
}
