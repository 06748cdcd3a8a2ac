package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id,omitempty" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type IndexResult struct {
	DocumentName string `json:"document_name,omitempty"`
	Inserted     int    `json:"inserted"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
	IndexResponse       *IndexResult `json:"index_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests ---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	ChatID  string `json:"chatID,omitempty"`
}

type IndexRequest struct {
	// Path to a document or directory on the server. Empty means the
	// configured upload directory.
	Path string `json:"path,omitempty"`
	// Rebuild drops and re-creates the collection before indexing.
	// Omitted means true; pass false explicitly to extend in place.
	Rebuild *bool `json:"rebuild,omitempty"`
}

type SimilarRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

type SimilarHit struct {
	Id       string       `json:"id"`
	Distance float32      `json:"distance"`
	Text     string       `json:"text,omitempty"`
	Metadata *HitMetadata `json:"metadata,omitempty"`
}

type HitMetadata struct {
	DocumentName string   `json:"document_name,omitempty"`
	ChunkIndex   int      `json:"chunk_index"`
	Headings     []string `json:"headings,omitempty"`
}

type SimilarResponse struct {
	Results []SimilarHit `json:"results"`
}

type SectionChunksRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
	ChunkIndex   int    `json:"chunk_index"`
	Depth        int    `json:"depth,omitempty"`
}

type SectionChunkHit struct {
	ChunkIndex   int      `json:"chunk_index"`
	DocumentName string   `json:"document_name"`
	Text         string   `json:"text,omitempty"`
	Headings     []string `json:"headings,omitempty"`
}

type SectionChunksResponse struct {
	DepthUsed      int               `json:"depth_used"`
	TargetHeading  string            `json:"target_heading,omitempty"`
	Results        []SectionChunkHit `json:"results"`
	Message        string            `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	VectorOK  bool   `json:"vector_ok"`
	DocLoaded bool   `json:"doc_loaded"`
}
