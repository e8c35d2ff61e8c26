package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies inference provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
// Token counts are zero when the provider does not report usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// batchParallelism bounds concurrent per-text Embed calls in BatchFallback.
const batchParallelism = 8

// BatchFallback embeds each text with a separate Embed call, issued
// concurrently with bounded parallelism. Safety net for providers without a
// native batch endpoint; result order matches input order.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return BatchEmbeddingResult{}, nil
	}

	embeddings := make([][]float32, len(texts))
	prompts := make([]int, len(texts))
	totals := make([]int, len(texts))

	sem := make(chan struct{}, batchParallelism)
	errCh := make(chan error, len(texts))

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()

			res, err := e.Embed(ctx, texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("fallback embed [%d]: %w", idx, err)
				return
			}
			embeddings[idx] = res.Embedding
			prompts[idx] = res.PromptTokens
			totals[idx] = res.TotalTokens
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range texts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return BatchEmbeddingResult{}, firstErr
	}

	result := BatchEmbeddingResult{Embeddings: embeddings}
	for i := range texts {
		result.PromptTokens += prompts[i]
		result.TotalTokens += totals[i]
	}
	return result, nil
}

// InstructionEmbedder is a decorator that prepends instruction text before
// embedding. Instruction-tuned models (e5 family) expect "query: " /
// "passage: " style prefixes; the default configuration leaves them empty.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends the instruction and delegates to the inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// BatchEmbed prepends the instruction to each text and delegates to the inner
// BatchEmbedder, falling back to per-text Embed calls when batch is unsupported.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction + t
	}

	if be, ok := e.inner.(BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, prefixed)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed: %w", err)
		}
		return res, nil
	}

	res, err := BatchFallback(ctx, e.inner, prefixed)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed fallback: %w", err)
	}
	return res, nil
}
