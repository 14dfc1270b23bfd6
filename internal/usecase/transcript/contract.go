package transcript

import (
	"context"
	"io"

	"audio-transcriber/internal/domain"
)

type transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*domain.RawTranscript, error)
}

type audioStore interface {
	SaveAudio(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	GetAudio(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteAudio(ctx context.Context, key string) error
}

type jobRepository interface {
	SaveJob(ctx context.Context, job *domain.TranscriptionJob) error
	GetJob(ctx context.Context, id string) (*domain.TranscriptionJob, error)
}

type taskProducer interface {
	Send(ctx context.Context, task *domain.TranscriptionTask) error
}

type mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}
