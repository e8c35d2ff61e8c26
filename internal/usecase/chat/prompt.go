package chat

import (
	"fmt"
	"strings"

	"github.com/foliochat/foliochat/internal/domain/rank"
)

// promptTemplate grounds the model: answer only from the supplied context, in
// French, concisely, and admit when the information is absent.
const promptTemplate = `Tu es l'assistant de ce portfolio. Réponds à la question en te basant uniquement sur le contexte ci-dessous. Réponds en français, de manière concise. Si l'information ne figure pas dans le contexte, dis-le clairement.

Contexte :
%s

Question : %s

Réponse :`

// contextBlock joins ranked documents as "(id) text" separated by blank lines.
func contextBlock(ranked []rank.Ranked) string {
	parts := make([]string, len(ranked))
	for i, r := range ranked {
		parts[i] = fmt.Sprintf("(%s) %s", r.Doc.ID, r.Doc.Text)
	}
	return strings.Join(parts, "\n\n")
}

func buildPrompt(contextText, question string) string {
	return fmt.Sprintf(promptTemplate, contextText, question)
}
