package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"audio-transcriber/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// AudioRepository stages uploaded audio in object storage while a job waits
// for the worker. Objects are removed once the worker is done with them.
type AudioRepository struct {
	client  *minio.Client
	bucket  string
	retries retry.Strategy
	logger  *zlog.Zerolog
}

func NewAudioRepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*AudioRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	repo := &AudioRepository{
		client:  client,
		bucket:  cfg.Minio.Bucket,
		retries: retries,
		logger:  logger,
	}

	if err := repo.ensureBucket(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *AudioRepository) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		r.logger.Info().Str("bucket", r.bucket).Msg("Created audio bucket")
	}
	return nil
}

func (r *AudioRepository) SaveAudio(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	_, err := r.client.PutObject(ctx, r.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store audio object: %w", err)
	}
	return nil
}

func (r *AudioRepository) GetAudio(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get audio object: %w", err)
	}
	return obj, nil
}

func (r *AudioRepository) DeleteAudio(ctx context.Context, key string) error {
	err := retry.Do(func() error {
		return r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{})
	}, r.retries)
	if err != nil {
		return fmt.Errorf("failed to remove audio object: %w", err)
	}
	return nil
}
