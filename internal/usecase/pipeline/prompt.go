package pipeline

import (
	"fmt"
	"strings"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

const promptTemplate = `You are a precise and factual AI assistant.

Answer the question ONLY using the context provided below.
If the answer is not contained in the context, say:
"%s"

Context:
%s

Question:
%s

Answer:`

// buildContext concatenates ranked passages into numbered context blocks,
// stopping before the character budget is exceeded.
func buildContext(docs []domain.RankedResult, maxChars int) string {
	var blocks []string
	total := 0

	for i, doc := range docs {
		block := fmt.Sprintf("[Document %d]\n%s\n", i+1, strings.TrimSpace(doc.Chunk.Text))
		if total+len(block) > maxChars {
			break
		}
		blocks = append(blocks, block)
		total += len(block)
	}

	return strings.Join(blocks, "\n")
}

func buildPrompt(query, context string) string {
	return fmt.Sprintf(promptTemplate, FallbackAnswer, context, query)
}
