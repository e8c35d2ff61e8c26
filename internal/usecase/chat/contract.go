package chat

import (
	"context"

	"github.com/foliochat/foliochat/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces an answer from a fully formed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
