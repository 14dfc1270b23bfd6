package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"audio-transcriber/internal/domain"
	"audio-transcriber/internal/export"
	repoJob "audio-transcriber/internal/repository/job"
	"audio-transcriber/internal/tempfile"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type TranscriptUsecase struct {
	transcriber transcriber
	jobs        jobRepository
	audioStore  audioStore
	producer    taskProducer
	mailer      mailer
	logger      *zlog.Zerolog
	tempDir     string
}

func NewTranscriptUsecase(tr transcriber, logger *zlog.Zerolog, tempDir string) *TranscriptUsecase {
	return &TranscriptUsecase{
		transcriber: tr,
		logger:      logger,
		tempDir:     tempDir,
	}
}

// WithJobs wires the async pipeline (object store, job records, task queue).
// Without it, SubmitJob reports ErrJobsDisabled.
func (u *TranscriptUsecase) WithJobs(jobs jobRepository, store audioStore, producer taskProducer) *TranscriptUsecase {
	u.jobs = jobs
	u.audioStore = store
	u.producer = producer
	return u
}

// WithMailer wires transcript delivery over email.
func (u *TranscriptUsecase) WithMailer(m mailer) *TranscriptUsecase {
	u.mailer = m
	return u
}

// Transcribe runs the synchronous pipeline: validate, spill to a scoped temp
// file, call the upstream API once, map the result. The temp file is removed
// on every exit path.
func (u *TranscriptUsecase) Transcribe(ctx context.Context, file io.Reader, filename string, size int64) (*domain.TranscriptResult, error) {
	if err := u.validate(filename, size); err != nil {
		return nil, err
	}

	tmp, err := tempfile.Write(u.tempDir, strings.ToLower(filepath.Ext(filename)), file)
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to stage upload")
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	defer func() {
		if err := tmp.Cleanup(); err != nil {
			u.logger.Error().Err(err).Str("path", tmp.Path()).Msg("Failed to remove temp file")
		}
	}()

	raw, err := u.transcriber.Transcribe(ctx, tmp.Path())
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Upstream transcription failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := Normalize(raw)
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to map upstream response")
		return nil, err
	}

	u.logger.Info().
		Str("filename", filename).
		Int("segments", len(result.Entries)).
		Msg("Transcription completed")
	return result, nil
}

// SubmitJob stages the audio in object storage, records a queued job and
// hands a task to the worker over Kafka.
func (u *TranscriptUsecase) SubmitJob(ctx context.Context, file io.Reader, filename string, size int64, contentType string) (*domain.TranscriptionJob, error) {
	if u.jobs == nil || u.audioStore == nil || u.producer == nil {
		return nil, ErrJobsDisabled
	}

	if err := u.validate(filename, size); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	objectKey := jobID + strings.ToLower(filepath.Ext(filename))

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}

	if err := u.audioStore.SaveAudio(ctx, objectKey, file, size, contentType); err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to save audio object")
		return nil, fmt.Errorf("failed to stage audio: %w", err)
	}

	now := time.Now()
	job := &domain.TranscriptionJob{
		ID:        jobID,
		Filename:  filename,
		Status:    domain.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.jobs.SaveJob(ctx, job); err != nil {
		u.audioStore.DeleteAudio(ctx, objectKey)
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task := &domain.TranscriptionTask{
		ID:        uuid.New().String(),
		JobID:     jobID,
		ObjectKey: objectKey,
		Filename:  filename,
	}

	if err := u.producer.Send(ctx, task); err != nil {
		u.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to enqueue task")
		u.failJob(ctx, job, "failed to enqueue transcription task")
		u.audioStore.DeleteAudio(ctx, objectKey)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	u.logger.Info().Str("job_id", jobID).Str("filename", filename).Msg("Transcription job queued")
	return job, nil
}

func (u *TranscriptUsecase) GetJob(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	if u.jobs == nil {
		return nil, ErrJobsDisabled
	}

	job, err := u.jobs.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, repoJob.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJobResult returns the transcript of a completed job.
func (u *TranscriptUsecase) GetJobResult(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	job, err := u.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobCompleted && job.Status != domain.JobFailed {
		return nil, ErrJobNotFinished
	}
	return job, nil
}

// ProcessTask is the worker half of the async pipeline: fetch the staged
// object, transcribe it through the same client as the sync path, persist
// the outcome. The staged object and its local spill file are removed on
// every exit path.
func (u *TranscriptUsecase) ProcessTask(ctx context.Context, task *domain.TranscriptionTask) error {
	if u.jobs == nil || u.audioStore == nil {
		return ErrJobsDisabled
	}

	job, err := u.jobs.GetJob(ctx, task.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", task.JobID, err)
	}

	defer func() {
		if err := u.audioStore.DeleteAudio(ctx, task.ObjectKey); err != nil {
			u.logger.Error().Err(err).Str("object_key", task.ObjectKey).Msg("Failed to remove audio object")
		}
	}()

	job.Status = domain.JobProcessing
	job.UpdatedAt = time.Now()
	if err := u.jobs.SaveJob(ctx, job); err != nil {
		u.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job processing")
	}

	reader, err := u.audioStore.GetAudio(ctx, task.ObjectKey)
	if err != nil {
		u.failJob(ctx, job, "failed to read staged audio")
		return fmt.Errorf("failed to get audio object: %w", err)
	}

	tmp, err := tempfile.Write(u.tempDir, filepath.Ext(task.ObjectKey), reader)
	reader.Close()
	if err != nil {
		u.failJob(ctx, job, "failed to stage audio for transcription")
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	defer func() {
		if err := tmp.Cleanup(); err != nil {
			u.logger.Error().Err(err).Str("path", tmp.Path()).Msg("Failed to remove temp file")
		}
	}()

	raw, err := u.transcriber.Transcribe(ctx, tmp.Path())
	if err != nil {
		u.failJob(ctx, job, "transcription failed, try again")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := Normalize(raw)
	if err != nil {
		u.failJob(ctx, job, "transcription failed, try again")
		return err
	}

	job.Status = domain.JobCompleted
	job.Text = result.Text
	job.Entries = result.Entries
	job.Error = ""
	job.UpdatedAt = time.Now()
	if err := u.jobs.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}

	u.logger.Info().
		Str("job_id", job.ID).
		Int("segments", len(job.Entries)).
		Msg("Job completed")
	return nil
}

// EmailTranscript renders the transcript and delivers it over SMTP.
func (u *TranscriptUsecase) EmailTranscript(to, title string, entries []domain.TranscriptEntry) error {
	if u.mailer == nil {
		return ErrEmailDisabled
	}

	textBody := export.RenderText(entries)
	htmlBody := export.RenderHTML(title, entries)

	if err := u.mailer.Send(to, "Transcript: "+title, textBody, htmlBody); err != nil {
		u.logger.Error().Err(err).Str("to", to).Msg("Failed to send transcript email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	u.logger.Info().Str("to", to).Str("title", title).Msg("Transcript emailed")
	return nil
}

func (u *TranscriptUsecase) validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !domain.AllowedExtensions[ext] {
		return ErrInvalidFileFormat
	}
	if size > domain.MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

func (u *TranscriptUsecase) failJob(ctx context.Context, job *domain.TranscriptionJob, reason string) {
	job.Status = domain.JobFailed
	job.Error = reason
	job.UpdatedAt = time.Now()
	if err := u.jobs.SaveJob(ctx, job); err != nil {
		u.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job failed")
	}
}
