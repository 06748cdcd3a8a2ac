package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/ingest"
	"github.com/UWFms/docling-chat-bot/internal/rag"
)

type wordCounter struct{}

func (wordCounter) CountTokens(_ context.Context, text string) int {
	return len(strings.Fields(text))
}

func (wordCounter) MaxTokens() int { return 0 }

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		CollectionName: "test-chunks",
		RetrieveLimit:  3,
		ScoreThreshold: 0.5,
		UploadDir:      t.TempDir(),
	}
}

func newTestService(t *testing.T, v *MockVectorDB, l *MockLLM, e *MockEmbedder, settings *config.Settings) rag.Service {
	t.Helper()
	if settings == nil {
		settings = testSettings(t)
	}
	return rag.NewService(v, l, e, ingest.NewProcessor(wordCounter{}), settings)
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					return "final answer", nil
				}
			},
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					t.Error("LLM should not be called on a cache hit")
					return "", nil
				}
			},
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, v []float32, topK int) ([]docModel.ScoredChunk, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, m []string, h []string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newTestService(t, mVec, mLLM, mEmbed, nil)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:      "test-job",
				Status:  jobModel.JobStatusQueued,
				JobType: jobModel.JobTypeQuery,
				JobPayload: jobModel.JobPayload{
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job, []string{})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d for %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestProcessRequestFiltersLowScoresAndRecordsSources(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, v []float32, topK int) ([]docModel.ScoredChunk, error) {
			return []docModel.ScoredChunk{
				{Score: 0.9, Text: "relevant", Meta: docModel.ChunkMeta{DocumentName: "a.pdf"}},
				{Score: 0.8, Text: "also relevant", Meta: docModel.ChunkMeta{DocumentName: "a.pdf"}},
				{Score: 0.1, Text: "noise", Meta: docModel.ChunkMeta{DocumentName: "b.pdf"}},
			}, nil
		},
	}
	var gotMatches []string
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, matches []string, h []string) (string, error) {
			gotMatches = matches
			return "ok", nil
		},
	}

	s := newTestService(t, mVec, mLLM, &MockEmbedder{}, nil)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	result := s.ProcessRequest(ctx, jobModel.Job{Id: "j1", JobPayload: jobModel.JobPayload{Question: "q"}}, nil)

	if len(gotMatches) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %v", gotMatches)
	}
	if len(result.JobPayload.Sources) != 1 || result.JobPayload.Sources[0] != "a.pdf" {
		t.Errorf("sources should be deduplicated document names, got %v", result.JobPayload.Sources)
	}
}

func TestIndexDocuments_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		rebuild        bool
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedStatus jobModel.JobStatus
		expectInserted bool
	}{
		{
			name:           "Index_Success",
			setupMocks:     func(e *MockEmbedder, v *MockVectorDB) {},
			expectInserted: true,
		},
		{
			name:    "Index_Rebuild_Drops_Collection",
			rebuild: true,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				recreated := false
				v.OnRecreateCollection = func(ctx context.Context, name string, dim uint64) error {
					recreated = true
					return nil
				}
				v.OnEnsureCollection = func(ctx context.Context, name string, dim uint64) error {
					if !recreated {
						t.Error("rebuild must recreate, not ensure")
					}
					return nil
				}
			},
			expectInserted: true,
		},
		{
			name: "Failure_Embedding_Probe",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name: "Failure_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) error {
					return errors.New("write failed")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			docPath := filepath.Join(settings.UploadDir, "sample.txt")
			if err := os.WriteFile(docPath, []byte("some content worth indexing here"), 0644); err != nil {
				t.Fatal(err)
			}

			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			tt.setupMocks(mEmbed, mVec)

			s := newTestService(t, mVec, &MockLLM{}, mEmbed, settings)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:      "index-job",
				JobType: jobModel.JobTypeIndex,
				JobPayload: jobModel.JobPayload{
					DocumentPath:      docPath,
					DocumentName:      "sample.txt",
					RebuildCollection: tt.rebuild,
				},
			}

			result := s.IndexDocuments(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectInserted {
				if result.JobPayload.InsertedChunks == 0 {
					t.Error("expected inserted chunks to be reported")
				}
				if _, err := os.Stat(docPath); !os.IsNotExist(err) {
					t.Error("uploaded file should be removed after indexing")
				}
			}
		})
	}
}

func TestIndexDocumentsMissingPath(t *testing.T) {
	s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{}, nil)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	job := jobModel.Job{
		Id:         "index-job",
		JobType:    jobModel.JobTypeIndex,
		JobPayload: jobModel.JobPayload{DocumentPath: "/does/not/exist"},
	}

	result := s.IndexDocuments(ctx, job)
	if result.Status != jobModel.JobStatusError {
		t.Errorf("expected error status, got %v", result.Status)
	}
}

func TestSearchSimilarUsesDefaultLimit(t *testing.T) {
	var gotTopK int
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, v []float32, topK int) ([]docModel.ScoredChunk, error) {
			gotTopK = topK
			return nil, nil
		},
	}

	settings := testSettings(t)
	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, settings)

	if _, err := s.SearchSimilar(context.Background(), "query", 0); err != nil {
		t.Fatal(err)
	}
	if gotTopK != settings.RetrieveLimit {
		t.Errorf("topK got %d, want the configured limit %d", gotTopK, settings.RetrieveLimit)
	}
}

func TestSearchSimilarDropsLowScores(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, v []float32, topK int) ([]docModel.ScoredChunk, error) {
			return []docModel.ScoredChunk{
				{Score: 0.9, Text: "relevant"},
				{Score: 0.3, Text: "noise"},
				{Score: 0.6, Text: "borderline"},
			}, nil
		},
	}

	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, nil)

	hits, err := s.SearchSimilar(context.Background(), "query", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits above the threshold, got %v", hits)
	}
	if hits[0].Text != "relevant" || hits[1].Text != "borderline" {
		t.Errorf("hit order changed: %v", hits)
	}
}

func TestProcessRequestCacheSaveOutlivesJob(t *testing.T) {
	saved := make(chan error, 1)
	mVec := &MockVectorDB{
		OnSaveToCache: func(ctx context.Context, id string, v []float32, answer string) error {
			// simulate a slow network hop so the save finishes after
			// the job context has been canceled
			time.Sleep(20 * time.Millisecond)
			saved <- ctx.Err()
			return ctx.Err()
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, m []string, h []string) (string, error) {
			return "answer", nil
		},
	}

	s := newTestService(t, mVec, mLLM, &MockEmbedder{}, nil)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace"))
	result := s.ProcessRequest(ctx, jobModel.Job{Id: "j1", JobPayload: jobModel.JobPayload{Question: "q"}}, nil)
	cancel()

	if result.JobPayload.Answer != "answer" {
		t.Fatalf("unexpected answer %q", result.JobPayload.Answer)
	}
	select {
	case err := <-saved:
		if err != nil {
			t.Errorf("cache save ran under a canceled context: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cache save never ran")
	}
}

func TestHealthy(t *testing.T) {
	t.Run("vector store down", func(t *testing.T) {
		mVec := &MockVectorDB{OnPing: func(ctx context.Context) error { return errors.New("offline") }}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, nil)
		vectorOK, docLoaded := s.Healthy(context.Background())
		if vectorOK || docLoaded {
			t.Errorf("got (%v, %v), want (false, false)", vectorOK, docLoaded)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		mVec := &MockVectorDB{OnCountPoints: func(ctx context.Context, name string) (uint64, error) { return 0, nil }}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, nil)
		vectorOK, docLoaded := s.Healthy(context.Background())
		if !vectorOK || docLoaded {
			t.Errorf("got (%v, %v), want (true, false)", vectorOK, docLoaded)
		}
	})
}
