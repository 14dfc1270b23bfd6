package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "audio-transcriber/internal/broker/kafka"
	"audio-transcriber/internal/config"
	transcript_h "audio-transcriber/internal/http-server/handler/transcript"
	"audio-transcriber/internal/http-server/router"
	"audio-transcriber/internal/mailer"
	minio_repo "audio-transcriber/internal/repository/audio/minio"
	redis_repo "audio-transcriber/internal/repository/job/redis"
	"audio-transcriber/internal/transcriber"
	transcript_uc "audio-transcriber/internal/usecase/transcript"

	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	jobRepo  *redis_repo.JobRepository
	producer *kafka_impl.ProducerClient
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	client := transcriber.New(cfg, logger)
	usecase := transcript_uc.NewTranscriptUsecase(client, logger, cfg.Upload.TempDir)

	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.Jobs.Enabled {
		jobRepo, err := redis_repo.NewJobRepository(cfg, retries)
		if err != nil {
			return nil, fmt.Errorf("failed to create job repository: %w", err)
		}

		audioRepo, err := minio_repo.NewAudioRepository(cfg, retries, logger)
		if err != nil {
			jobRepo.Close()
			return nil, fmt.Errorf("failed to create audio repository: %w", err)
		}

		producer := kafka_impl.NewProducerClient(cfg)

		usecase.WithJobs(jobRepo, audioRepo, producer)
		app.jobRepo = jobRepo
		app.producer = producer
	}

	if cfg.EmailEnabled() {
		usecase.WithMailer(mailer.New(cfg))
	}

	transcriptHandler := transcript_h.NewTranscriptHandler(usecase, logger)

	mux := router.SetupRouter(&router.Handler{
		TranscriptHandler: transcriptHandler,
	})

	app.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (a *App) Run() error {
	a.logger.Info().
		Str("port", a.cfg.Server.Port).
		Bool("jobs_enabled", a.cfg.Jobs.Enabled).
		Str("diarize_mode", a.cfg.Transcriber.Mode).
		Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		if a.jobRepo != nil {
			a.jobRepo.Close()
		}
		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
