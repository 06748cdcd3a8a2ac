package rag

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/metrics"
)

var (
	ErrDocumentNotFound = errors.New("document not found in collection")
	ErrChunkNotFound    = errors.New("chunk index not found in document")
)

// SectionResult is the outcome of a chunks-by-heading lookup: every
// chunk of the document that falls under the resolved heading, in
// document order.
type SectionResult struct {
	DepthUsed     int
	TargetHeading string
	Chunks        []docModel.StoredChunk
	Message       string
}

// SectionChunks resolves the heading that sits depth levels above the
// chunk at chunkIndex and returns all chunks under it. A depth of 1
// means the chunk's innermost heading, 2 its parent, and so on. Depth
// is clamped to the heading path of the anchor chunk.
func (s *service) SectionChunks(ctx context.Context, documentName string, chunkIndex int, depth int) (SectionResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("section_lookup", time.Since(start)) }()

	chunks, err := s.vectorDB.DocumentChunks(ctx, documentName)
	if err != nil {
		return SectionResult{}, err
	}
	if len(chunks) == 0 {
		return SectionResult{}, ErrDocumentNotFound
	}

	var anchor *docModel.StoredChunk
	for i := range chunks {
		if chunks[i].Meta.ChunkIndex == chunkIndex {
			anchor = &chunks[i]
			break
		}
	}
	if anchor == nil {
		return SectionResult{}, ErrChunkNotFound
	}

	headings := anchor.Meta.Headings
	if len(headings) == 0 {
		return SectionResult{
			Chunks:  []docModel.StoredChunk{},
			Message: "chunk has no heading context",
		}, nil
	}

	if depth < 1 {
		depth = 1
	}
	depthUsed := depth
	if depthUsed > len(headings) {
		depthUsed = len(headings)
	}
	target := headings[len(headings)-depthUsed]

	var section []docModel.StoredChunk
	for _, c := range chunks {
		if containsHeading(c.Meta.Headings, target) {
			section = append(section, c)
		}
	}
	sort.Slice(section, func(i, j int) bool {
		return section[i].Meta.ChunkIndex < section[j].Meta.ChunkIndex
	})

	return SectionResult{
		DepthUsed:     depthUsed,
		TargetHeading: target,
		Chunks:        section,
	}, nil
}

func containsHeading(headings []string, target string) bool {
	for _, h := range headings {
		if h == target {
			return true
		}
	}
	return false
}
