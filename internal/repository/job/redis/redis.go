package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"audio-transcriber/internal/config"
	"audio-transcriber/internal/domain"
	repoJob "audio-transcriber/internal/repository/job"

	redis "github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
)

const keyPrefix = "transcription:job:"

// JobRepository keeps job records in Redis. Every record carries a TTL so
// no transcript outlives its retention window.
type JobRepository struct {
	client  *redis.Client
	ttl     time.Duration
	retries retry.Strategy
}

func NewJobRepository(cfg *config.Config, retries retry.Strategy) (*JobRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &JobRepository{
		client:  client,
		ttl:     cfg.Jobs.TTL,
		retries: retries,
	}, nil
}

func (r *JobRepository) SaveJob(ctx context.Context, job *domain.TranscriptionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = retry.Do(func() error {
		return r.client.Set(ctx, keyPrefix+job.ID, data, r.ttl).Err()
	}, r.retries)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetJob(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repoJob.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job domain.TranscriptionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (r *JobRepository) Close() error {
	return r.client.Close()
}
