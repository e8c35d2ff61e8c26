package hf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foliochat/foliochat/internal/domain"
	"github.com/foliochat/foliochat/internal/metrics"
)

// embeddingsService is the upstream name surfaced in client-visible errors.
const embeddingsService = "Embeddings"

// Embedder calls the feature-extraction pipeline of the Hugging Face
// Inference API.
type Embedder struct {
	client client
	model  string
	logger *zap.Logger
}

// EmbedderConfig holds the embedding client settings.
type EmbedderConfig struct {
	Token   string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewEmbedder creates a Hugging Face embedding client.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	return &Embedder{
		client: newClient(cfg.BaseURL, cfg.Token),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

type embedRequest struct {
	Inputs string `json:"inputs"`
}

// Embed implements domain.Embedder. The API does not report token usage, so
// the result carries the vector only.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", e.client.baseURL, e.model)

	start := time.Now()
	status, body, err := e.client.postJSON(ctx, url, embedRequest{Inputs: text})
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embeddings request: %w", err)
	}
	if !success(status) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		e.logger.Warn("embeddings API returned non-success status",
			zap.Int("status", status),
			zap.String("model", e.model),
		)
		return domain.EmbeddingResult{}, domain.NewUpstreamError(embeddingsService, status, string(body))
	}

	vec, err := decodeVector(body)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		return domain.EmbeddingResult{}, domain.NewDecodeError(embeddingsService, err)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// BatchEmbed issues one request per text with bounded concurrency; the
// feature-extraction pipeline has no batch endpoint.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

// decodeVector normalizes the feature-extraction response to a flat vector.
// Fallback order: flat []float32, then [][]float32 taking the single outer
// element. Anything else is a decode failure.
func decodeVector(data []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("empty embedding vector")
		}
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, errors.New("empty embedding vector")
		}
		return nested[0], nil
	}

	return nil, errors.New("unexpected embedding response shape")
}
