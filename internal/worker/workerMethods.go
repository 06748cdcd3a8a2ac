package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/config"
	jobmodel "github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
	"github.com/UWFms/docling-chat-bot/internal/metrics"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()

	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "jobType", job.JobType)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIndex {
		job.CurrentStep = jobmodel.IndexProcessing
		job = _ragService.IndexDocuments(ctx, job)
	} else {
		job.CurrentStep = jobmodel.HistoryCall
		job = processQuery(job, ctx, log)
		if job.Status != jobmodel.JobStatusError {
			if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
				log.Error("Failed to save chat history", "error", err)
			}
		}
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func processQuery(job jobmodel.Job, ctx context.Context, log *logger_i.Logger) jobmodel.Job {
	messageHistory, err := _jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		log.Error("Failed to get message history", "error", err)
	}
	return _ragService.ProcessRequest(ctx, job, messageHistory)
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to persist job state", "error", err)
	}
}
