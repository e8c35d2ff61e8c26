// Package corpus holds the fixed knowledge base the assistant answers from.
// The documents ship embedded in the binary; changing them requires a
// redeploy, which also clears the process-lifetime embedding cache.
package corpus

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/foliochat/foliochat/internal/domain"
)

//go:embed documents.yaml
var raw []byte

type document struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

type file struct {
	Documents []document `yaml:"documents"`
}

// Load parses the embedded document set, validating that every entry has a
// unique id and non-empty text. Order is preserved.
func Load() ([]domain.Document, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}

	seen := make(map[string]struct{}, len(f.Documents))
	docs := make([]domain.Document, len(f.Documents))
	for i, d := range f.Documents {
		if d.ID == "" {
			return nil, fmt.Errorf("corpus document %d has no id", i)
		}
		if d.Text == "" {
			return nil, fmt.Errorf("corpus document %q has no text", d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("duplicate corpus document id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		docs[i] = domain.Document{ID: d.ID, Text: d.Text}
	}
	return docs, nil
}

// MustLoad loads the corpus or panics. The corpus is embedded, so a failure
// here is a build defect, not a runtime condition.
func MustLoad() []domain.Document {
	docs, err := Load()
	if err != nil {
		panic(err)
	}
	return docs
}
