package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "audio-transcriber/internal/broker/kafka"
	"audio-transcriber/internal/config"
	"audio-transcriber/internal/domain"
	minio_repo "audio-transcriber/internal/repository/audio/minio"
	redis_repo "audio-transcriber/internal/repository/job/redis"
	"audio-transcriber/internal/transcriber"
	transcript_uc "audio-transcriber/internal/usecase/transcript"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// Worker consumes transcription tasks from Kafka and runs them through the
// same usecase pipeline the HTTP server uses.
type Worker struct {
	cfg      *config.Config
	logger   *zlog.Zerolog
	consumer *kafka_impl.ConsumerClient
	usecase  *transcript_uc.TranscriptUsecase
	jobRepo  *redis_repo.JobRepository
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	retries := cfg.DefaultRetryStrategy()

	jobRepo, err := redis_repo.NewJobRepository(cfg, retries)
	if err != nil {
		return nil, fmt.Errorf("failed to create job repository: %w", err)
	}

	audioRepo, err := minio_repo.NewAudioRepository(cfg, retries, logger)
	if err != nil {
		jobRepo.Close()
		return nil, fmt.Errorf("failed to create audio repository: %w", err)
	}

	client := transcriber.New(cfg, logger)
	usecase := transcript_uc.NewTranscriptUsecase(client, logger, cfg.Upload.TempDir).
		WithJobs(jobRepo, audioRepo, nil)

	return &Worker{
		cfg:      cfg,
		logger:   logger,
		consumer: kafka_impl.NewConsumerClient(cfg),
		usecase:  usecase,
		jobRepo:  jobRepo,
	}, nil
}

func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan kafka.Message, w.cfg.Jobs.Concurrency)

	go w.consumer.StartConsuming(ctx, messages, w.cfg.DefaultRetryStrategy())

	for i := 0; i < w.cfg.Jobs.Concurrency; i++ {
		go w.worker(ctx, i, messages)
	}

	w.logger.Info().Int("concurrency", w.cfg.Jobs.Concurrency).Msg("Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	w.logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	cancel()

	w.consumer.Close()
	w.jobRepo.Close()
	return nil
}

func (w *Worker) worker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("worker_id", id).Msg("Worker stopped")
			return
		case msg := <-messages:
			w.processMessage(ctx, id, msg)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, workerID int, msg kafka.Message) {
	var task domain.TranscriptionTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		w.logger.Error().Err(err).Int("worker_id", workerID).Msg("Failed to unmarshal task")
		return
	}

	w.logger.Info().
		Int("worker_id", workerID).
		Str("task_id", task.ID).
		Str("job_id", task.JobID).
		Msg("Processing task")

	if err := w.usecase.ProcessTask(ctx, &task); err != nil {
		w.logger.Error().Err(err).Str("job_id", task.JobID).Msg("Task failed")
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Error().Err(err).Str("job_id", task.JobID).Msg("Failed to commit message")
	}
}
