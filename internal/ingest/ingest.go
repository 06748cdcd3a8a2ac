// Package ingest turns uploaded documents into heading-aware,
// token-budgeted chunks and pushes them into the vector store.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/adapter/utils"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/ingest/tokenizer"
	"github.com/UWFms/docling-chat-bot/internal/rag/embedding"
	"github.com/UWFms/docling-chat-bot/internal/rag/vectorDB"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

type Processor struct {
	counter tokenizer.Counter
	logger  *logger_i.Logger
}

func NewProcessor(counter tokenizer.Counter) *Processor {
	return &Processor{
		counter: counter,
		logger:  logger_i.NewLogger("DocProcessor"),
	}
}

// ProcessDocument converts one file into chunks. Chunk indexes are
// positional within the document, the unit the section lookup works in.
func (p *Processor) ProcessDocument(ctx context.Context, path string, filename string) ([]docModel.Chunk, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", filename)
	log.Info("Converting document", "path", path)

	docType := getDocType(path)
	if docType == docModel.ERR {
		return nil, fmt.Errorf("unsupported document type for %s", filename)
	}

	doc := docModel.Document{
		Id:          utils.GetNewUUID(),
		Name:        filename,
		IngestedAt:  time.Now(),
		ContentType: docType,
	}

	pages, err := p.extractTextLogged(path, docType)
	if err != nil {
		return nil, err
	}

	limit := config.ChunkTokenLimit
	if max := p.counter.MaxTokens(); max > 0 && max < limit {
		limit = max
	}

	start := time.Now()
	var chunks []docModel.Chunk
	chunkIndex := 0
	for _, page := range pages {
		for _, sec := range parseSections(page.Content) {
			for _, text := range splitByTokens(ctx, sec.Text, p.counter, limit, config.ChunkTokenOverlap) {
				if text == "" {
					continue
				}
				chunks = append(chunks, docModel.Chunk{
					Doc:        doc,
					ChunkId:    utils.GetNewUUID(),
					Text:       text,
					ChunkIndex: chunkIndex,
					PageNum:    page.Number,
					Headings:   sec.Headings,
				})
				chunkIndex++
			}
		}
	}

	log.Info("Document chunked",
		"chunks", len(chunks),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"tokenLimit", limit)
	return chunks, nil
}

// BatchIngest embeds and upserts chunks in batches. Returns how many
// chunks made it into the store.
func BatchIngest(ctx context.Context, collection string, chunks []docModel.Chunk, db vectorDB.DataProcessor, embedder embedding.Embedder) (int, error) {
	log := logger_i.NewLogger("BatchIngest").With("traceId", ctx.Value(config.TRACE_ID_KEY))

	inserted := 0
	for i := 0; i < len(chunks); i += config.EmbedBatchSize {
		end := i + config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := make([]docModel.Chunk, 0, end-i)
		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			if c.Text == "" {
				continue
			}
			currentBatch = append(currentBatch, c)
			texts = append(texts, c.Text)
		}
		if len(texts) == 0 {
			continue
		}

		log.Debug("Embedding batch", "size", len(texts))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return inserted, fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := db.UpsertBatch(ctx, collection, currentBatch, vectors); err != nil {
			return inserted, fmt.Errorf("vector upsert failed: %w", err)
		}
		inserted += len(currentBatch)
	}

	return inserted, nil
}
