// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
)

const defaultAPITimeout = 60 * time.Second

// GeminiClient implements schemas.LLMClient on top of the Gemini API SDK.
type GeminiClient struct {
	models     *genai.Models
	httpClient *http.Client
	logger     *zap.Logger
	config     config.LLMModelConfig
}

// NewGeminiClient initializes the SDK client. Endpoint, when set, replaces the
// API base URL, which is how tests and proxies redirect traffic.
func NewGeminiClient(ctx context.Context, cfg config.LLMModelConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("Gemini model name is required")
	}

	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.Endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		models:     client.Models,
		httpClient: httpClient,
		config:     cfg,
		logger:     logger.Named("llm_client.gemini"),
	}, nil
}

// Generate sends one generateContent call and returns the concatenated text of
// the first candidate. A response without text (blocked or truncated) yields an
// empty string and no error, callers decide what an empty answer means.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	startTime := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.config.Model, genai.Text(req.UserPrompt), c.buildGenerateConfig(req))
	duration := time.Since(startTime)
	if err != nil {
		c.logAPIError(err, duration)
		return "", fmt.Errorf("gemini generateContent failed: %w", err)
	}

	fields := []zap.Field{zap.String("model", c.config.Model), zap.Duration("duration", duration)}
	if resp.UsageMetadata != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("completion_tokens", resp.UsageMetadata.CandidatesTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}

	text := resp.Text()
	if text == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		c.logger.Warn("Gemini returned no text", append(fields, zap.String("finish_reason", reason))...)
		return "", nil
	}

	c.logger.Info("LLM generation complete (Gemini)", fields...)
	return text, nil
}

// Close releases nothing; the SDK client holds no resources beyond its
// http.Client, whose idle connections are dropped here.
func (c *GeminiClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *GeminiClient) buildGenerateConfig(req schemas.GenerationRequest) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Options.Temperature)),
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if c.config.TopP > 0 {
		gc.TopP = genai.Ptr(c.config.TopP)
	}
	if c.config.TopK > 0 {
		gc.TopK = genai.Ptr(float32(c.config.TopK))
	}
	if c.config.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(c.config.MaxTokens)
	}
	if req.Options.ForceJSONFormat {
		gc.ResponseMIMEType = "application/json"
		if req.Options.ResponseSchema != nil {
			gc.ResponseSchema = toGenaiSchema(req.Options.ResponseSchema)
		}
	}
	return gc
}

var schemaTypes = map[schemas.SchemaType]genai.Type{
	schemas.SchemaObject:  genai.TypeObject,
	schemas.SchemaArray:   genai.TypeArray,
	schemas.SchemaString:  genai.TypeString,
	schemas.SchemaNumber:  genai.TypeNumber,
	schemas.SchemaBoolean: genai.TypeBoolean,
}

// toGenaiSchema translates the provider neutral schema tree.
func toGenaiSchema(s *schemas.ResponseSchema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     schemaTypes[s.Type],
		Items:    toGenaiSchema(s.Items),
		Required: append([]string(nil), s.Required...),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func (c *GeminiClient) logAPIError(err error, duration time.Duration) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("Gemini request abandoned", zap.Error(err), zap.Duration("duration", duration))
		return
	}
	c.logger.Error("Gemini request failed", zap.Error(err), zap.Duration("duration", duration))
}
