package llm

import (
	"fmt"
	"strings"
)

// BuildUserPrompt assembles the grounded prompt: retrieved chunks
// first, then the trailing chat history, then the question itself.
func BuildUserPrompt(query string, matches []string, messageHistory []string) string {
	var b strings.Builder

	b.WriteString("Context from the indexed documents:\n")
	b.WriteString(strings.Join(matches, "\n"))

	if len(messageHistory) > 0 {
		b.WriteString("\n\nRecent conversation (question/answer pairs, most recent first):\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
	}

	return fmt.Sprintf("%s\n\nUser Question: %s", b.String(), query)
}
