package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/UWFms/docling-chat-bot/internal/adapter"
	"github.com/UWFms/docling-chat-bot/internal/adapter/utils"
	"github.com/UWFms/docling-chat-bot/internal/api"
	"github.com/UWFms/docling-chat-bot/internal/config"
	"github.com/UWFms/docling-chat-bot/pkg/logger_i"
)

var logRH *logger_i.Logger

// newJobData carries everything needed to enqueue either job type.
type newJobData struct {
	id                string
	chatId            string
	message           string
	isNewChat         bool
	traceId           string
	isIndexJob        bool
	documentName      string
	documentPath      string
	rebuildCollection bool
}

// ChatHandler godoc
// @Summary      Start a new chat job
// @Description  Accepts a message, initializes a background processing job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Chat message and optional chat ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {
		logRH.Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	chatID := requestData.ChatID
	isNewChat := false
	if chatID == "" {
		chatID = utils.GetNewUUID()
		isNewChat = true
		logRH.Debug("New chat request", "chatId", chatID)
	}

	enqueueAndRespond(w, newJobData{
		id:        utils.GetNewUUID(),
		chatId:    chatID,
		message:   requestData.Message,
		isNewChat: isNewChat,
		traceId:   traceID(request),
	})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceID(r))

	logRH.Debug("Get status request", "path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// UploadHandler godoc
// @Summary      Upload a document for indexing
// @Description  Receives a file via multipart/form-data, saves it to the upload directory, and queues an indexing job.
// @Tags         Indexing
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF or DOCX file to upload"
// @Success      202  {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400  {object}  api.JobResponse      "Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse      "Storage or write error"
// @Router       /doc/upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "error", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxUploadSize = 32 << 20 // 32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	enqueueAndRespond(w, newJobData{
		id:           utils.GetNewUUID(),
		traceId:      traceID(r),
		isIndexJob:   true,
		documentName: docName,
		documentPath: tempFilePath,
	})
}

// IndexHandler godoc
// @Summary      Reindex server-side documents
// @Description  Queues a job that indexes a document or directory already on the server. The collection is dropped and rebuilt first unless rebuild is false.
// @Tags         Indexing
// @Accept       json
// @Produce      json
// @Param        request  body      api.IndexRequest     false  "Optional path and rebuild flag"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Bad request"
// @Router       /doc/index [post]
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.IndexRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
		logRH.Warn("Bad index request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	path := requestData.Path
	if path == "" {
		path = settings.UploadDir
	}

	// A reindex rebuilds the collection unless the caller opts out.
	rebuild := requestData.Rebuild == nil || *requestData.Rebuild

	enqueueAndRespond(w, newJobData{
		id:                utils.GetNewUUID(),
		traceId:           traceID(r),
		isIndexJob:        true,
		documentName:      filepath.Base(path),
		documentPath:      path,
		rebuildCollection: rebuild,
	})
}

func enqueueAndRespond(w http.ResponseWriter, data newJobData) {
	CreateNewJob(data)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(data.id))
}

func traceID(r *http.Request) string {
	if v, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close request body", "error", err)
	}
}
