package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UWFms/docling-chat-bot/internal/api"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/data/store"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/job"
	"github.com/UWFms/docling-chat-bot/internal/rag"
)

type stubRagService struct {
	OnHealthy func(ctx context.Context) (bool, bool)
}

func (s *stubRagService) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	return jobt
}

func (s *stubRagService) IndexDocuments(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	return jobt
}

func (s *stubRagService) SearchSimilar(ctx context.Context, query string, topK int) ([]docModel.ScoredChunk, error) {
	return nil, nil
}

func (s *stubRagService) SectionChunks(ctx context.Context, documentName string, chunkIndex int, depth int) (rag.SectionResult, error) {
	return rag.SectionResult{}, nil
}

func (s *stubRagService) Healthy(ctx context.Context) (bool, bool) {
	if s.OnHealthy != nil {
		return s.OnHealthy(ctx)
	}
	return true, true
}

var (
	testRag   = &stubRagService{}
	testJobCh chan jobModel.Job
)

// initTestHandlers wires the package singletons once; the sync.Once
// guards make repeat calls no-ops.
func initTestHandlers(t *testing.T) {
	t.Helper()
	if handlerInstance != nil {
		return
	}
	testJobCh = make(chan jobModel.Job, 16)
	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        testJobCh,
		DispatcherChannel: make(chan bool, 16),
		JobStore:          store.InitInMemoryJobStore(),
		MessageStore:      store.InitMessageStore(),
	})
	InitJobHandler(svc, &config.Settings{UploadDir: t.TempDir()})
	InitDocHandler(testRag)
}

func TestHealthHandlerStatus(t *testing.T) {
	initTestHandlers(t)
	defer func() { testRag.OnHealthy = nil }()

	testCases := []struct {
		name       string
		vectorOK   bool
		docLoaded  bool
		wantCode   int
		wantStatus string
	}{
		{"indexed and reachable", true, true, http.StatusOK, "ok"},
		{"vector store down", false, false, http.StatusServiceUnavailable, "degraded"},
		{"reachable but nothing indexed", true, false, http.StatusOK, "degraded"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testRag.OnHealthy = func(ctx context.Context) (bool, bool) {
				return tc.vectorOK, tc.docLoaded
			}

			recorder := httptest.NewRecorder()
			HealthHandler(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

			if recorder.Code != tc.wantCode {
				t.Errorf("got code %d, want %d", recorder.Code, tc.wantCode)
			}
			var resp api.HealthResponse
			if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tc.wantStatus {
				t.Errorf("got status %q, want %q", resp.Status, tc.wantStatus)
			}
		})
	}
}

func TestIndexHandlerRebuildDefault(t *testing.T) {
	initTestHandlers(t)

	testCases := []struct {
		name        string
		body        string
		wantRebuild bool
	}{
		{"empty body rebuilds", "", true},
		{"explicit opt-out extends", `{"rebuild": false}`, false},
		{"explicit rebuild", `{"rebuild": true}`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/v1/doc/index", strings.NewReader(tc.body))
			IndexHandler(recorder, request)

			if recorder.Code != http.StatusAccepted {
				t.Fatalf("got code %d, want %d", recorder.Code, http.StatusAccepted)
			}
			queued := <-testJobCh
			if queued.JobType != jobModel.JobTypeIndex {
				t.Fatalf("queued job type %q, want index", queued.JobType)
			}
			if queued.JobPayload.RebuildCollection != tc.wantRebuild {
				t.Errorf("rebuild = %v, want %v", queued.JobPayload.RebuildCollection, tc.wantRebuild)
			}
		})
	}
}
