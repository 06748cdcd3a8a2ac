package llm

import "context"

// Provider generates an answer from the user query, the retrieved
// chunk texts and the recent conversation turns.
type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (string, error)
}
