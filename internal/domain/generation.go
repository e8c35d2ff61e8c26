package domain

import "context"

// Generator is the text generation contract between layers. It takes a fully
// formed prompt and returns the generated answer, trimmed of surrounding
// whitespace.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
