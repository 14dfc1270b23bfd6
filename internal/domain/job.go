package domain

import "time"

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// TranscriptionJob tracks one async transcription from submission to result.
// Jobs live in Redis with a TTL; nothing outlives its retention window.
type TranscriptionJob struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename"`
	Status    JobStatus         `json:"status"`
	Text      string            `json:"text,omitempty"`
	Entries   []TranscriptEntry `json:"entries,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TranscriptionTask is the message sent to the worker over Kafka. The audio
// itself travels through object storage; the task only carries its key.
type TranscriptionTask struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
}

const (
	KafkaTopicTranscription = "transcription-jobs"
	KafkaGroupID            = "transcriber-group"
)
