package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// recordingEmbedder returns a one-element vector derived from text length and
// records every input it sees.
type recordingEmbedder struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (m *recordingEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()

	if m.err != nil {
		return EmbeddingResult{}, m.err
	}
	return EmbeddingResult{
		Embedding:    []float32{float32(len(text))},
		PromptTokens: 1,
		TotalTokens:  2,
	}, nil
}

func TestBatchFallback_PreservesOrder(t *testing.T) {
	emb := &recordingEmbedder{}
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}

	res, err := BatchFallback(context.Background(), emb, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
	for i, text := range texts {
		if res.Embeddings[i][0] != float32(len(text)) {
			t.Errorf("embedding[%d] = %v, want vector for %q", i, res.Embeddings[i], text)
		}
	}
	if res.TotalTokens != 2*len(texts) {
		t.Errorf("TotalTokens = %d, want %d", res.TotalTokens, 2*len(texts))
	}
}

func TestBatchFallback_Empty(t *testing.T) {
	res, err := BatchFallback(context.Background(), &recordingEmbedder{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil embeddings for empty input, got %v", res.Embeddings)
	}
}

func TestBatchFallback_PropagatesError(t *testing.T) {
	wantErr := errors.New("provider down")
	emb := &recordingEmbedder{err: wantErr}

	_, err := BatchFallback(context.Background(), emb, []string{"a", "b"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestInstructionEmbedder_PrependsPrefix(t *testing.T) {
	inner := &recordingEmbedder{}
	emb := NewInstructionEmbedder(inner, "query: ")

	if _, err := emb.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.inputs) != 1 || inner.inputs[0] != "query: hello" {
		t.Errorf("inner saw %v, want [\"query: hello\"]", inner.inputs)
	}
}

func TestInstructionEmbedder_BatchFallsBack(t *testing.T) {
	inner := &recordingEmbedder{}
	emb := NewInstructionEmbedder(inner, "passage: ")

	res, err := emb.BatchEmbed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	for _, in := range inner.inputs {
		if !strings.HasPrefix(in, "passage: ") {
			t.Errorf("input %q missing instruction prefix", in)
		}
	}
}
