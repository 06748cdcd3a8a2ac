package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/api"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/job"
	"github.com/UWFms/docling-chat-bot/internal/metrics"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

var (
	handlerInstance *JobHandler
	once            sync.Once
	logJH           *logger_i.Logger
	settings        *config.Settings
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service, cfg *config.Settings) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}
		settings = cfg

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "jobId", newJob.id)
	log.Info("Creating new job")
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewChat {
		log.Info("Create new chat")
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug("Validating chat id", "chatId", chatReq.ChatID)
	if chatReq.Message == "" {
		return false
	}
	if chatReq.ChatID == "" {
		return true
	}
	return handlerInstance.service.MessageStore.ValidateChatId(context.Background(), chatReq.ChatID)
}

func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued

	if newJob.isIndexJob {
		_job.CurrentStep = jobModel.IndexInit
		_job.JobType = jobModel.JobTypeIndex
		_job.JobPayload.DocumentName = newJob.documentName
		_job.JobPayload.DocumentPath = newJob.documentPath
		_job.JobPayload.RebuildCollection = newJob.rebuildCollection
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.ChatId = newJob.chatId
		_job.JobPayload.Question = newJob.message
		_job.CurrentStep = jobModel.UserQueryInit
	}

	metrics.IncrementJobsInQueue()

	// blocking send, the buffered channel is the backpressure
	h.service.JobChannel <- _job
	logJH.Info("Queued new job", "jobType", _job.JobType)

	// a worker is added every N requests, and always for index jobs
	// since those involve slow batch calls to external systems
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeIndex {
		metrics.StartDispatcherSignalCount()
		logJH.Debug("Signalling dispatcher", "requestCount", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if err := h.service.MessageStore.InitNewChat(ctxC, chatId); err != nil {
		logJH.Error("Error initiating new chat", "chatId", chatId, "error", err)
	}
}
