package hf

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foliochat/foliochat/internal/domain"
	"github.com/foliochat/foliochat/internal/metrics"
)

const generationService = "Generation"

// Generator calls a text generation model of the Hugging Face Inference API.
type Generator struct {
	client       client
	model        string
	maxNewTokens int
	temperature  float64
	logger       *zap.Logger
}

// GeneratorConfig holds the generation client settings.
type GeneratorConfig struct {
	Token        string
	BaseURL      string
	Model        string
	MaxNewTokens int
	Temperature  float64
	Logger       *zap.Logger
}

// NewGenerator creates a Hugging Face text generation client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	return &Generator{
		client:       newClient(cfg.BaseURL, cfg.Token),
		model:        cfg.Model,
		maxNewTokens: cfg.MaxNewTokens,
		temperature:  cfg.Temperature,
		logger:       cfg.Logger,
	}
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s", g.client.baseURL, g.model)
	payload := generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens: g.maxNewTokens,
			Temperature:  g.temperature,
		},
	}

	start := time.Now()
	status, body, err := g.client.postJSON(ctx, url, payload)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		return "", fmt.Errorf("generation request: %w", err)
	}
	if !success(status) {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		g.logger.Warn("generation API returned non-success status",
			zap.Int("status", status),
			zap.String("model", g.model),
		)
		return "", domain.NewUpstreamError(generationService, status, string(body))
	}

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(providerName, g.model).Observe(duration.Seconds())

	return strings.TrimSpace(decodeGenerated(body)), nil
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// decodeGenerated extracts the answer from a generation response.
// Fallback order: a list holding an object with generated_text, a bare
// object with generated_text, a JSON string, and finally the raw body.
func decodeGenerated(data []byte) string {
	var list []generatedText
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText
	}

	var obj generatedText
	if err := json.Unmarshal(data, &obj); err == nil && obj.GeneratedText != "" {
		return obj.GeneratedText
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}

	return string(data)
}
