package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"audio-transcriber/internal/domain"
	"audio-transcriber/internal/export"
	"audio-transcriber/internal/http-server/handler/transcript/dto"
	transcript_uc "audio-transcriber/internal/usecase/transcript"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	// maxMemory bounds how much of the multipart form is held in memory;
	// the rest spills to disk.
	maxMemory = 32 << 20

	// multipartOverhead leaves room for the form framing around a payload
	// that is itself allowed to be exactly MaxUploadSize.
	multipartOverhead = 1 << 20

	audioField = "audio"

	upstreamFailureMessage = "Transcription failed, try again"
	formatsMessage         = "Invalid file format. Supported formats: mp3, mp4, mpeg, mpga, m4a, wav, webm"
)

type TranscriptHandler struct {
	usecase  transcriptUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewTranscriptHandler(usecase transcriptUsecase, logger *zlog.Zerolog) *TranscriptHandler {
	return &TranscriptHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

// Transcribe handles the synchronous path: the upload is transcribed within
// the request and the diarized entries are returned directly.
func (h *TranscriptHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.extractAudio(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.usecase.Transcribe(r.Context(), file, header.filename, header.size)
	if err != nil {
		h.handleTranscribeError(w, err, header.filename)
		return
	}

	h.logger.Info().
		Str("filename", header.filename).
		Int("segments", len(result.Entries)).
		Msg("Transcript returned")

	h.respondJSON(w, http.StatusOK, dto.TranscribeResponse{
		Text:     result.Text,
		Segments: toDTOSegments(result.Entries),
	})
}

// SubmitJob queues a transcription for background processing.
func (h *TranscriptHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.extractAudio(w, r)
	if !ok {
		return
	}
	defer file.Close()

	job, err := h.usecase.SubmitJob(r.Context(), file, header.filename, header.size, header.contentType)
	if err != nil {
		h.handleTranscribeError(w, err, header.filename)
		return
	}

	h.respondJSON(w, http.StatusAccepted, dto.JobAcceptedResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
	})
}

func (h *TranscriptHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Job ID is required", nil)
		return
	}

	job, err := h.usecase.GetJob(r.Context(), id)
	if err != nil {
		h.handleJobError(w, err, id)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.JobStatusResponse{
		JobID:  job.ID,
		Status: string(job.Status),
		Error:  job.Error,
	})
}

func (h *TranscriptHandler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Job ID is required", nil)
		return
	}

	job, err := h.usecase.GetJobResult(r.Context(), id)
	if err != nil {
		h.handleJobError(w, err, id)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.JobResultResponse{
		JobID:    job.ID,
		Status:   string(job.Status),
		Text:     job.Text,
		Segments: toDTOSegments(job.Entries),
		Error:    job.Error,
	})
}

// Export renders a transcript in the requested download format.
func (h *TranscriptHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	var req dto.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	entries := toDomainEntries(req.Segments)
	title := req.Title
	if title == "" {
		title = "Meeting Transcript"
	}

	var content, contentType, ext string
	switch format {
	case "text":
		content = export.RenderText(entries)
		contentType = "text/plain; charset=utf-8"
		ext = "txt"
	case "markdown":
		content = export.RenderMarkdown(title, entries)
		contentType = "text/markdown; charset=utf-8"
		ext = "md"
	case "html":
		content = export.RenderHTML(title, entries)
		contentType = "text/html; charset=utf-8"
		ext = "html"
	default:
		h.respondError(w, http.StatusBadRequest, "Unknown export format. Supported: text, markdown, html", nil)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+"."+ext))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// SendEmail delivers a transcript to the given address.
func (h *TranscriptHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validate.Var(req.Email, "required,email"); err != nil {
		h.respondError(w, http.StatusBadRequest, "A valid email address is required", nil)
		return
	}

	title := req.Title
	if title == "" {
		title = "Meeting Transcript"
	}

	if err := h.usecase.EmailTranscript(req.Email, title, toDomainEntries(req.Segments)); err != nil {
		if errors.Is(err, transcript_uc.ErrEmailDisabled) {
			h.respondError(w, http.StatusServiceUnavailable, "Email delivery is not configured", nil)
			return
		}
		h.logger.Error().Err(err).Str("to", req.Email).Msg("Failed to email transcript")
		h.respondError(w, http.StatusInternalServerError, "Failed to send email", nil)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.EmailSentResponse{
		Success: true,
		Message: fmt.Sprintf("Transcript sent to %s", req.Email),
	})
}

type audioHeader struct {
	filename    string
	size        int64
	contentType string
}

// extractAudio parses the multipart form and pulls out the single audio
// field, rejecting oversized bodies before they are buffered.
func (h *TranscriptHandler) extractAudio(w http.ResponseWriter, r *http.Request) (multipart.File, audioHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn().Err(err).Msg("Upload exceeds size limit")
			h.respondError(w, http.StatusRequestEntityTooLarge, "File too large (max 100 MB)", nil)
			return nil, audioHeader{}, false
		}
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return nil, audioHeader{}, false
	}

	f, fh, err := r.FormFile(audioField)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Audio file not found in request")
		h.respondError(w, http.StatusBadRequest, "No audio file provided", nil)
		return nil, audioHeader{}, false
	}

	if strings.TrimSpace(fh.Filename) == "" {
		f.Close()
		h.respondError(w, http.StatusBadRequest, "No file selected", nil)
		return nil, audioHeader{}, false
	}

	return f, audioHeader{
		filename:    fh.Filename,
		size:        fh.Size,
		contentType: fh.Header.Get("Content-Type"),
	}, true
}

func (h *TranscriptHandler) handleTranscribeError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, transcript_uc.ErrInvalidFileFormat):
		h.logger.Warn().Str("filename", filename).Msg("Invalid file format")
		h.respondError(w, http.StatusBadRequest, formatsMessage, nil)
	case errors.Is(err, transcript_uc.ErrFileTooLarge):
		h.logger.Warn().Str("filename", filename).Msg("File too large")
		h.respondError(w, http.StatusRequestEntityTooLarge, "File too large (max 100 MB)", nil)
	case errors.Is(err, transcript_uc.ErrUpstream):
		h.logger.Error().Err(err).Str("filename", filename).Msg("Upstream failure")
		h.respondError(w, http.StatusBadGateway, upstreamFailureMessage, nil)
	case errors.Is(err, transcript_uc.ErrJobsDisabled):
		h.respondError(w, http.StatusServiceUnavailable, "Background processing is not configured", nil)
	case errors.Is(err, transcript_uc.ErrFilesystem):
		h.logger.Error().Err(err).Str("filename", filename).Msg("Filesystem failure")
		h.respondError(w, http.StatusInternalServerError, "Failed to store upload", nil)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Transcription request failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to process upload", nil)
	}
}

func (h *TranscriptHandler) handleJobError(w http.ResponseWriter, err error, jobID string) {
	switch {
	case errors.Is(err, transcript_uc.ErrJobNotFound):
		h.respondError(w, http.StatusNotFound, "Job not found", nil)
	case errors.Is(err, transcript_uc.ErrJobNotFinished):
		h.respondError(w, http.StatusConflict, "Job is still processing", nil)
	case errors.Is(err, transcript_uc.ErrJobsDisabled):
		h.respondError(w, http.StatusServiceUnavailable, "Background processing is not configured", nil)
	default:
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		h.respondError(w, http.StatusInternalServerError, "Failed to get job", nil)
	}
}

func toDTOSegments(entries []domain.TranscriptEntry) []dto.Segment {
	segments := make([]dto.Segment, 0, len(entries))
	for _, e := range entries {
		segments = append(segments, dto.Segment{
			Speaker:   e.Speaker,
			Text:      e.Text,
			Timestamp: e.Timestamp,
		})
	}
	return segments
}

func toDomainEntries(segments []dto.Segment) []domain.TranscriptEntry {
	entries := make([]domain.TranscriptEntry, 0, len(segments))
	for _, s := range segments {
		entries = append(entries, domain.TranscriptEntry{
			Speaker:   s.Speaker,
			Text:      s.Text,
			Timestamp: s.Timestamp,
		})
	}
	return entries
}

func (h *TranscriptHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *TranscriptHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	if err != nil {
		response.Details = err.Error()
	}
	h.respondJSON(w, status, response)
}
