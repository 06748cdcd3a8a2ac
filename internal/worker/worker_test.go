package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/job"
	"github.com/UWFms/docling-chat-bot/internal/rag"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

// MockRagService tracks how many jobs reached the pipeline.
type MockRagService struct {
	ProcessedCount int32
	IndexedCount   int32
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job, hist []string) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return j
}

func (m *MockRagService) IndexDocuments(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.IndexedCount, 1)
	return j
}

func (m *MockRagService) SearchSimilar(ctx context.Context, query string, topK int) ([]docModel.ScoredChunk, error) {
	return nil, nil
}

func (m *MockRagService) SectionChunks(ctx context.Context, documentName string, chunkIndex int, depth int) (rag.SectionResult, error) {
	return rag.SectionResult{}, nil
}

func (m *MockRagService) Healthy(ctx context.Context) (bool, bool) {
	return true, true
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

type MockMessageStore struct {
	OnGetHistory func(ctx context.Context, chatId string) ([]string, error)
	OnSaveChat   func(ctx context.Context, chatId string, payload jobModel.JobPayload) error
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool { return true }

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error { return nil }

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) ([]string, error) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id)
	}
	return []string{}, nil
}

func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, p jobModel.JobPayload) error {
	if m.OnSaveChat != nil {
		return m.OnSaveChat(ctx, id, p)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
		MessageStore:      &MockMessageStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a query job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery}

		time.Sleep(50 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.ProcessedCount); processed != 1 {
			t.Errorf("Expected 1 query processed, got %d", processed)
		}
	})

	t.Run("Worker routes index jobs to the index pipeline", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-2", JobType: jobModel.JobTypeIndex}

		time.Sleep(50 * time.Millisecond)

		if indexed := atomic.LoadInt32(&mockRag.IndexedCount); indexed != 1 {
			t.Errorf("Expected 1 index job processed, got %d", indexed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_SavesTerminalState(t *testing.T) {
	var savedStatuses []jobModel.JobStatus
	var mu sync.Mutex

	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
		JobStore: &MockJobStore{
			OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
				mu.Lock()
				savedStatuses = append(savedStatuses, j.Status)
				mu.Unlock()
				return nil
			},
		},
		MessageStore: &MockMessageStore{},
	}
	InitServices(jobSvc, &MockRagService{})
	logger = logger_i.NewLogger("TestWorkerPool")

	executeJob(jobModel.Job{Id: "job-x", JobType: jobModel.JobTypeQuery, TraceId: "trace-x"})

	mu.Lock()
	defer mu.Unlock()
	if len(savedStatuses) != 2 {
		t.Fatalf("expected running + terminal saves, got %v", savedStatuses)
	}
	if savedStatuses[0] != jobModel.JobStatusRunning || savedStatuses[1] != jobModel.JobStatusComplete {
		t.Errorf("unexpected status sequence %v", savedStatuses)
	}
}

func TestWorker_IdleTimeoutShrinksToMinimum(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	defer atomic.StoreInt64(&minWorkerCount, config.MinWorkerCount)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = config.IdleWorkerTimeout }()

	createWorker()
	createWorker()
	createWorker()
	time.Sleep(400 * time.Millisecond)

	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("expected the pool to shrink to the minimum of 1, got %d", count)
	}

	stopChan <- true
	wg.Wait()
}

func TestWorker_IdleTimeoutKeepsFloor(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2)
	defer atomic.StoreInt64(&minWorkerCount, config.MinWorkerCount)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = config.IdleWorkerTimeout }()

	createWorker()
	createWorker()
	time.Sleep(300 * time.Millisecond)

	if count := atomic.LoadInt64(&currentWorkerCount); count != 2 {
		t.Errorf("idle timeout must not drain the pool below the minimum of 2, got %d", count)
	}

	stopChan <- true
	stopChan <- true
	wg.Wait()
}
