package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/UWFms/docling-chat-bot/internal/ingest/tokenizer"
)

// section is a run of body text together with the heading path that was
// active when it appeared ("2", "2.4", "2.4.1 Indexing").
type section struct {
	Headings []string
	Text     string
}

var numberedHeading = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+\S`)

// headingDepth classifies a line as a heading. Numbered headings get
// their depth from the dotted label ("2.4.1" is depth 3), markdown
// headings from the marker count. Long lines and lines that read like
// sentences are body text.
func headingDepth(line string) (int, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 120 {
		return 0, false
	}

	if strings.HasPrefix(trimmed, "#") {
		depth := 0
		for depth < len(trimmed) && trimmed[depth] == '#' {
			depth++
		}
		if depth <= 6 && depth < len(trimmed) && trimmed[depth] == ' ' {
			return depth, true
		}
		return 0, false
	}

	m := numberedHeading.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}
	if strings.HasSuffix(trimmed, ".") {
		return 0, false
	}
	return strings.Count(m[1], ".") + 1, true
}

func headingLabel(line string) string {
	trimmed := strings.TrimSpace(line)
	return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
}

// parseSections walks the text line by line, maintaining the heading
// stack, and emits a section per contiguous block of body text.
func parseSections(text string) []section {
	var sections []section
	var stack []string
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if content == "" {
			return
		}
		headings := make([]string, len(stack))
		copy(headings, stack)
		sections = append(sections, section{Headings: headings, Text: content})
	}

	for _, line := range strings.Split(text, "\n") {
		depth, ok := headingDepth(line)
		if !ok {
			body = append(body, line)
			continue
		}

		flush()
		if depth <= len(stack) {
			stack = stack[:depth-1]
		}
		stack = append(stack, headingLabel(line))
	}
	flush()

	return sections
}

// splitByTokens cuts text into chunks of at most limit tokens with
// roughly overlap tokens carried between neighbours. Separators are
// tried from the most to the least semantic.
func splitByTokens(ctx context.Context, text string, counter tokenizer.Counter, limit int, overlap int) []string {
	if limit < 1 {
		limit = 1
	}
	if counter.CountTokens(ctx, text) <= limit {
		return []string{text}
	}

	separators := []string{"\n\n", "\n", ". ", " "}
	var splitChar string
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			break
		}
	}
	if splitChar == "" {
		// single giant token run, nothing sensible to cut on
		return []string{text}
	}

	parts := strings.Split(text, splitChar)
	var chunks []string
	var current []string
	currentTokens := 0
	freshParts := false

	flush := func() {
		if len(current) == 0 || !freshParts {
			return
		}
		chunks = append(chunks, strings.Join(current, splitChar))
		freshParts = false

		// seed the next chunk with the tail of this one
		var tail []string
		tailTokens := 0
		for i := len(current) - 1; i >= 0 && tailTokens < overlap; i-- {
			tail = append([]string{current[i]}, tail...)
			tailTokens += counter.CountTokens(ctx, current[i])
		}
		current = tail
		currentTokens = tailTokens
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		partTokens := counter.CountTokens(ctx, part)

		if currentTokens+partTokens > limit && len(current) > 0 {
			flush()
		}

		if partTokens > limit {
			// oversized single part, recurse with finer separators
			flush()
			sub := splitByTokens(ctx, part, counter, limit, overlap)
			chunks = append(chunks, sub...)
			current = nil
			currentTokens = 0
			continue
		}

		current = append(current, part)
		currentTokens += partTokens
		freshParts = true
	}

	if len(current) > 0 && freshParts {
		chunks = append(chunks, strings.Join(current, splitChar))
	}

	return chunks
}
