package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Server      ServerConfig
	Upload      UploadConfig
	Transcriber TranscriberConfig
	Jobs        JobsConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Minio       MinioConfig
	SMTP        SMTPConfig
}

type ServerConfig struct {
	Port            string        `env:"HTTP_PORT" env-default:"5001"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15m"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type UploadConfig struct {
	TempDir string `env:"UPLOAD_TEMP_DIR" env-default:""`
}

type TranscriberConfig struct {
	APIKey string `env:"OPENAI_API_KEY" env-required:"true"`
	// BaseURL points at the OpenAI-compatible transcription endpoint.
	BaseURL string        `env:"TRANSCRIBER_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string        `env:"TRANSCRIBER_MODEL" env-default:"gpt-4o-transcribe-diarize"`
	Timeout time.Duration `env:"TRANSCRIBER_TIMEOUT" env-default:"10m"`
	// Mode selects how speaker turns are produced: "diarized" asks the
	// transcription model for diarized_json directly, "chat" transcribes to
	// plain text and labels speakers with a chat model.
	Mode      string `env:"DIARIZE_MODE" env-default:"diarized"`
	ChatModel string `env:"LABELER_CHAT_MODEL" env-default:"gpt-4o"`
}

type JobsConfig struct {
	Enabled     bool          `env:"JOBS_ENABLED" env-default:"false"`
	TTL         time.Duration `env:"JOBS_TTL" env-default:"24h"`
	Concurrency int           `env:"WORKER_CONCURRENCY" env-default:"2"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"transcription-jobs"`
	GroupID string   `env:"KAFKA_GROUP_ID" env-default:"transcriber-group"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY" env-default:""`
	SecretKey string `env:"MINIO_SECRET_KEY" env-default:""`
	Bucket    string `env:"MINIO_BUCKET" env-default:"audio-uploads"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:""`
	Port     string `env:"SMTP_PORT" env-default:"587"`
	Sender   string `env:"SMTP_SENDER" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
}

// MustLoad reads configuration from the environment. A missing API key is a
// startup failure: the process must not begin serving without it.
func MustLoad() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// DefaultRetryStrategy covers infrastructure calls (Redis, Kafka, MinIO).
// The upstream transcription call is never retried.
func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Backoff:  2,
	}
}

// EmailEnabled reports whether transcript delivery over SMTP is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Sender != ""
}
