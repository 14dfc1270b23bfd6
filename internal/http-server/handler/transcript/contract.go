package transcript

import (
	"context"
	"io"

	"audio-transcriber/internal/domain"
)

type transcriptUsecase interface {
	Transcribe(ctx context.Context, file io.Reader, filename string, size int64) (*domain.TranscriptResult, error)
	SubmitJob(ctx context.Context, file io.Reader, filename string, size int64, contentType string) (*domain.TranscriptionJob, error)
	GetJob(ctx context.Context, id string) (*domain.TranscriptionJob, error)
	GetJobResult(ctx context.Context, id string) (*domain.TranscriptionJob, error)
	EmailTranscript(to, title string, entries []domain.TranscriptEntry) error
}
