// Package chat orchestrates the question-answering pipeline: embed the
// question, rank the corpus against a process-lifetime embedding cache, build
// a grounding prompt, and generate the answer.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/foliochat/foliochat/internal/domain"
	"github.com/foliochat/foliochat/internal/domain/rank"
	"github.com/foliochat/foliochat/internal/metrics"
)

// Answer is the pipeline result: generated text plus the ranked source ids
// that grounded it, in relevance order.
type Answer struct {
	Text    string
	Sources []string
}

// Service runs the retrieval-augmented answering pipeline over a fixed corpus.
type Service struct {
	query  Embedder
	docs   Embedder
	gen    Generator
	corpus []domain.Document
	topK   int
	logger *zap.Logger

	// mu guards vecs. The corpus embeddings are computed on the first
	// request after process start and reused until the process dies;
	// holding the lock across the fill makes the fill happen once even
	// under concurrent cold requests. A failed fill leaves vecs nil so
	// the next request retries.
	mu   sync.Mutex
	vecs [][]float32
}

// New creates a chat service. query and docs may be the same embedder; they
// differ when instruction prefixes distinguish queries from passages.
func New(query, docs Embedder, gen Generator, corpus []domain.Document, topK int, logger *zap.Logger) *Service {
	return &Service{
		query:  query,
		docs:   docs,
		gen:    gen,
		corpus: corpus,
		topK:   topK,
		logger: logger,
	}
}

// Ask answers a question from the corpus.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, domain.ErrEmptyQuestion
	}

	qres, err := s.query.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	vecs, err := s.corpusVectors(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("embed corpus: %w", err)
	}

	ranked := rank.Top(qres.Embedding, s.corpus, vecs, s.topK)

	prompt := buildPrompt(contextBlock(ranked), question)
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]string, len(ranked))
	for i, r := range ranked {
		sources[i] = r.Doc.ID
	}

	s.logger.Debug("answered question",
		zap.Int("context_docs", len(ranked)),
		zap.Strings("sources", sources),
	)

	return Answer{Text: text, Sources: sources}, nil
}

// CacheWarm reports whether the corpus embeddings are already computed.
func (s *Service) CacheWarm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vecs != nil
}

// corpusVectors returns the cached corpus embeddings, computing them on first
// use. The cache is index-aligned with the corpus and never invalidated; the
// corpus is immutable for the life of the process.
func (s *Service) corpusVectors(ctx context.Context) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vecs != nil {
		metrics.CorpusCacheTotal.WithLabelValues("hit").Inc()
		return s.vecs, nil
	}
	metrics.CorpusCacheTotal.WithLabelValues("miss").Inc()

	texts := make([]string, len(s.corpus))
	for i, d := range s.corpus {
		texts[i] = d.Text
	}

	var res domain.BatchEmbeddingResult
	var err error
	if be, ok := s.docs.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, s.docs, texts)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(s.corpus) {
		return nil, fmt.Errorf("corpus embedding count mismatch: %d documents, %d vectors",
			len(s.corpus), len(res.Embeddings))
	}

	s.logger.Info("corpus embeddings cached",
		zap.Int("documents", len(s.corpus)),
		zap.Int("total_tokens", res.TotalTokens),
	)

	s.vecs = res.Embeddings
	return s.vecs, nil
}
