package adapter

import (
	"fmt"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/api"
	"github.com/UWFms/docling-chat-bot/internal/domain/docModel"
	"github.com/UWFms/docling-chat-bot/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/api/v1/status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: toRAGResult(job.JobPayload),
		IndexResponse:       toIndexResult(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func toRAGResult(payload jobModel.JobPayload) *api.RAGResponse {
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func toIndexResult(job jobModel.Job) *api.IndexResult {
	if job.JobType != jobModel.JobTypeIndex || job.Status != jobModel.JobStatusComplete {
		return nil
	}
	return &api.IndexResult{
		DocumentName: job.JobPayload.DocumentName,
		Inserted:     job.JobPayload.InsertedChunks,
	}
}

func ToSimilarResponse(hits []docModel.ScoredChunk) api.SimilarResponse {
	results := make([]api.SimilarHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, api.SimilarHit{
			Id:       hit.Id,
			Distance: hit.Score,
			Text:     hit.Text,
			Metadata: &api.HitMetadata{
				DocumentName: hit.Meta.DocumentName,
				ChunkIndex:   hit.Meta.ChunkIndex,
				Headings:     hit.Meta.Headings,
			},
		})
	}
	return api.SimilarResponse{Results: results}
}

func ToSectionChunkHits(chunks []docModel.StoredChunk) []api.SectionChunkHit {
	hits := make([]api.SectionChunkHit, 0, len(chunks))
	for _, ch := range chunks {
		hits = append(hits, api.SectionChunkHit{
			ChunkIndex:   ch.Meta.ChunkIndex,
			DocumentName: ch.Meta.DocumentName,
			Text:         ch.Text,
			Headings:     ch.Meta.Headings,
		})
	}
	return hits
}

func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
