package ingest

import (
	"context"
	"strings"
	"testing"
)

type wordCounter struct{ max int }

func (w wordCounter) CountTokens(_ context.Context, text string) int {
	return len(strings.Fields(text))
}

func (w wordCounter) MaxTokens() int { return w.max }

func TestGetDocType(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"report.pdf", "PDF"},
		{"Report.PDF", "PDF"},
		{"notes.docx", "DOCX"},
		{"notes.txt", "DOCX"},
		{"notes.odt", "DOCX"},
		{"image.png", "ERROR"},
		{"noextension", "ERROR"},
	}
	for _, c := range cases {
		if got := string(getDocType(c.path)); got != c.want {
			t.Errorf("getDocType(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestParseSectionsHeadingStack(t *testing.T) {
	content := strings.Join([]string{
		"# Introduction",
		"Opening text.",
		"## Scope",
		"Scope body.",
		"## Audience",
		"Audience body.",
		"# Conclusion",
		"Closing text.",
	}, "\n")

	sections := parseSections(content)
	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}

	if got := sections[1].Headings; len(got) != 2 || got[0] != "Introduction" || got[1] != "Scope" {
		t.Errorf("nested headings wrong: %v", got)
	}
	if got := sections[3].Headings; len(got) != 1 || got[0] != "Conclusion" {
		t.Errorf("top-level heading should reset the stack, got %v", got)
	}
	if !strings.Contains(sections[2].Text, "Audience body.") {
		t.Errorf("section body lost: %q", sections[2].Text)
	}
}

func TestParseSectionsNumberedHeadings(t *testing.T) {
	content := strings.Join([]string{
		"1. Overview",
		"Overview body.",
		"1.1 Details",
		"Detail body.",
	}, "\n")

	sections := parseSections(content)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	got := sections[1].Headings
	if len(got) != 2 || got[0] != "1. Overview" || got[1] != "1.1 Details" {
		t.Errorf("numbered heading stack wrong: %v", got)
	}
}

func TestParseSectionsNoHeadings(t *testing.T) {
	sections := parseSections("Just a paragraph of text.\nAnother line.")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if len(sections[0].Headings) != 0 {
		t.Errorf("expected no headings, got %v", sections[0].Headings)
	}
}

func TestSplitByTokensShortTextIsSingleChunk(t *testing.T) {
	ctx := context.Background()
	chunks := splitByTokens(ctx, "short text fits easily", wordCounter{}, 50, 5)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
}

func TestSplitByTokensRespectsLimit(t *testing.T) {
	ctx := context.Background()
	var parts []string
	for i := 0; i < 20; i++ {
		parts = append(parts, "sentence with exactly five words.")
	}
	text := strings.Join(parts, "\n\n")

	counter := wordCounter{}
	chunks := splitByTokens(ctx, text, counter, 12, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := counter.CountTokens(ctx, c); n > 12 {
			t.Errorf("chunk %d has %d tokens, limit 12", i, n)
		}
	}
}

func TestSplitByTokensOverlapCarriesTail(t *testing.T) {
	ctx := context.Background()
	text := "alpha one two.\n\nbeta three four.\n\ngamma five six.\n\ndelta seven eight."

	chunks := splitByTokens(ctx, text, wordCounter{}, 6, 3)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d: %v", len(chunks), chunks)
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][strings.LastIndex(chunks[i-1], "\n\n")+2:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d does not start with previous tail %q: %q", i, prevTail, chunks[i])
		}
	}
}

type runeCounter struct{}

func (runeCounter) CountTokens(_ context.Context, text string) int { return len([]rune(text)) }
func (runeCounter) MaxTokens() int                                 { return 0 }

func TestSplitByTokensNoSeparatorPassthrough(t *testing.T) {
	text := "unbrokenrunwithnoseparators"
	chunks := splitByTokens(context.Background(), text, runeCounter{}, 5, 2)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("expected the run back unchanged, got %v", chunks)
	}
}
