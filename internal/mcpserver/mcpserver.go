// Package mcpserver exposes the retrieval operations as MCP tools so
// agent clients can search the indexed documents directly.
package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/UWFms/docling-chat-bot/internal/rag"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to search for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"how many chunks to return"`
}

type SearchHit struct {
	DocumentName string   `json:"document_name"`
	ChunkIndex   int      `json:"chunk_index"`
	Score        float32  `json:"score"`
	Text         string   `json:"text"`
	Headings     []string `json:"headings,omitempty"`
}

type SearchOutput struct {
	Results []SearchHit `json:"results"`
}

type SectionInput struct {
	DocumentName string `json:"document_name" jsonschema:"name of an indexed document"`
	ChunkIndex   int    `json:"chunk_index" jsonschema:"anchor chunk index within the document"`
	Depth        int    `json:"depth,omitempty" jsonschema:"how many heading levels above the chunk to widen to"`
}

type SectionChunk struct {
	ChunkIndex int      `json:"chunk_index"`
	Text       string   `json:"text"`
	Headings   []string `json:"headings,omitempty"`
}

type SectionOutput struct {
	TargetHeading string         `json:"target_heading,omitempty"`
	DepthUsed     int            `json:"depth_used"`
	Chunks        []SectionChunk `json:"chunks"`
	Message       string         `json:"message,omitempty"`
}

type toolService struct {
	ragService rag.Service
	logger     *logger_i.Logger
}

// NewHandler builds the streamable HTTP handler serving the MCP tools.
func NewHandler(ragService rag.Service) http.Handler {
	ts := &toolService{
		ragService: ragService,
		logger:     logger_i.NewLogger("MCPServer"),
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docling-chat-bot",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over the indexed documents. Returns the closest chunks with scores and metadata.",
	}, ts.searchDocuments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "section_chunks",
		Description: "Given a document and a chunk index, returns every chunk under the heading a number of levels above that chunk.",
	}, ts.sectionChunks)

	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)
}

func (ts *toolService) searchDocuments(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}

	hits, err := ts.ragService.SearchSimilar(ctx, input.Query, input.TopK)
	if err != nil {
		ts.logger.Error("search_documents failed", "error", err)
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{Results: make([]SearchHit, 0, len(hits))}
	for _, hit := range hits {
		out.Results = append(out.Results, SearchHit{
			DocumentName: hit.Meta.DocumentName,
			ChunkIndex:   hit.Meta.ChunkIndex,
			Score:        hit.Score,
			Text:         hit.Text,
			Headings:     hit.Meta.Headings,
		})
	}
	return nil, out, nil
}

func (ts *toolService) sectionChunks(ctx context.Context, req *mcp.CallToolRequest, input SectionInput) (*mcp.CallToolResult, SectionOutput, error) {
	if input.DocumentName == "" {
		return nil, SectionOutput{}, errors.New("document_name is required")
	}

	res, err := ts.ragService.SectionChunks(ctx, input.DocumentName, input.ChunkIndex, input.Depth)
	if err != nil {
		ts.logger.Error("section_chunks failed", "error", err)
		return nil, SectionOutput{}, err
	}

	out := SectionOutput{
		TargetHeading: res.TargetHeading,
		DepthUsed:     res.DepthUsed,
		Message:       res.Message,
		Chunks:        make([]SectionChunk, 0, len(res.Chunks)),
	}
	for _, c := range res.Chunks {
		out.Chunks = append(out.Chunks, SectionChunk{
			ChunkIndex: c.Meta.ChunkIndex,
			Text:       c.Text,
			Headings:   c.Meta.Headings,
		})
	}
	return nil, out, nil
}
