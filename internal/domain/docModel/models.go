package docModel

import "time"

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

type Document struct {
	Id          string    `json:"source_doc_id"`
	Name        string    `json:"document_name"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentType DocType   `json:"content_type"`
}

// Chunk is one indexable unit of a document. ChunkIndex is the position
// of the chunk inside its document and Headings is the heading path
// ("2", "2.4", "2.4.1 Title") active where the chunk text came from.
type Chunk struct {
	Doc        Document
	ChunkId    string   `json:"chunk_id"`
	Text       string   `json:"text"`
	ChunkIndex int      `json:"chunk_index"`
	PageNum    int      `json:"page_num"`
	Headings   []string `json:"headings,omitempty"`
}

// ChunkMeta is the public metadata stored alongside a chunk vector.
type ChunkMeta struct {
	DocumentName string   `json:"document_name"`
	ChunkIndex   int      `json:"chunk_index"`
	Headings     []string `json:"headings,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// ScoredChunk is a similarity search hit.
type ScoredChunk struct {
	Id    string    `json:"id"`
	Score float32   `json:"score"`
	Text  string    `json:"text"`
	Meta  ChunkMeta `json:"metadata"`
}

// StoredChunk is a chunk read back from the vector store without a
// similarity score (filtered per-document queries).
type StoredChunk struct {
	Id   string    `json:"id"`
	Text string    `json:"text"`
	Meta ChunkMeta `json:"metadata"`
}
