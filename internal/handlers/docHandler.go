package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/UWFms/docling-chat-bot/internal/adapter"
	"github.com/UWFms/docling-chat-bot/internal/api"
	"github.com/UWFms/docling-chat-bot/internal/rag"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

var (
	docHandlerInstance *DocHandler
	docOnce            sync.Once
	logDH              *logger_i.Logger
)

// DocHandler serves the synchronous document endpoints. Retrieval is
// fast enough that the job queue would only add latency here.
type DocHandler struct {
	ragService rag.Service
}

func InitDocHandler(ragService rag.Service) {
	docOnce.Do(func() {
		docHandlerInstance = &DocHandler{ragService: ragService}
		logDH = logger_i.NewLogger("DocHandler")
	})
}

// SimilarHandler godoc
// @Summary      Similarity search
// @Description  Embeds the query and returns the closest chunks with scores and metadata.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.SimilarRequest   true  "Query text and optional top_k"
// @Success      200      {object}  api.SimilarResponse  "Scored hits"
// @Failure      400      {object}  api.JobResponse      "Bad request"
// @Failure      500      {object}  api.JobResponse      "Search failure"
// @Router       /doc/similar [post]
func SimilarHandler(w http.ResponseWriter, r *http.Request) {
	if docHandlerInstance == nil || !validateContext(r.Context()) {
		return
	}

	var requestData api.SimilarRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Query == "" {
		logDH.Warn("Bad similar request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "query is required")
		return
	}

	hits, err := docHandlerInstance.ragService.SearchSimilar(r.Context(), requestData.Query, requestData.TopK)
	if err != nil {
		logDH.Error("Similarity search failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "search failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToSimilarResponse(hits))
}

// ChunksByHeadingHandler godoc
// @Summary      Chunks of a section
// @Description  Resolves the heading a number of levels above the given chunk and returns every chunk of the document under that heading, in document order.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.SectionChunksRequest   true  "Document name, anchor chunk index and heading depth"
// @Success      200      {object}  api.SectionChunksResponse  "Section chunks"
// @Failure      400      {object}  api.JobResponse            "Bad request"
// @Failure      404      {object}  api.JobResponse            "Unknown document or chunk"
// @Failure      500      {object}  api.JobResponse            "Lookup failure"
// @Router       /doc/chunks-by-heading [post]
func ChunksByHeadingHandler(w http.ResponseWriter, r *http.Request) {
	if docHandlerInstance == nil || !validateContext(r.Context()) {
		return
	}

	var requestData api.SectionChunksRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.DocumentName == "" {
		logDH.Warn("Bad section request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	res, err := docHandlerInstance.ragService.SectionChunks(r.Context(), requestData.DocumentName, requestData.ChunkIndex, requestData.Depth)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrDocumentNotFound), errors.Is(err, rag.ErrChunkNotFound):
			WriteErrorResponse(w, http.StatusNotFound, requestData.DocumentName, err.Error())
		default:
			logDH.Error("Section lookup failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, requestData.DocumentName, "lookup failed")
		}
		return
	}

	writeJsonResponse(w, http.StatusOK, api.SectionChunksResponse{
		DepthUsed:     res.DepthUsed,
		TargetHeading: res.TargetHeading,
		Results:       adapter.ToSectionChunkHits(res.Chunks),
		Message:       res.Message,
	})
}

// HealthHandler godoc
// @Summary      Service health
// @Description  Reports whether the vector store is reachable and whether any documents are indexed.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	if docHandlerInstance == nil {
		writeJsonResponse(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "starting"})
		return
	}

	vectorOK, docLoaded := docHandlerInstance.ragService.Healthy(r.Context())

	status := "ok"
	code := http.StatusOK
	if !vectorOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else if !docLoaded {
		// reachable store, nothing indexed yet
		status = "degraded"
	}

	writeJsonResponse(w, code, api.HealthResponse{
		Status:    status,
		VectorOK:  vectorOK,
		DocLoaded: docLoaded,
	})
}
