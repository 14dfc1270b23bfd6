package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"audio-transcriber/internal/config"
	"audio-transcriber/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

const (
	ModeDiarized = "diarized"
	ModeChat     = "chat"
)

// Client talks to the OpenAI audio transcription endpoint. The diarized
// response format and chunking_strategy are not exposed by the SDK, so the
// call goes over plain HTTP. One attempt per file, no caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	mode       string
	labeler    *Labeler
	logger     *zlog.Zerolog
}

type diarizedResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		ID      string  `json:"id"`
		Speaker string  `json:"speaker"`
		Text    string  `json:"text"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"segments"`
}

func New(cfg *config.Config, logger *zlog.Zerolog) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Transcriber.Timeout},
		baseURL:    cfg.Transcriber.BaseURL,
		apiKey:     cfg.Transcriber.APIKey,
		model:      cfg.Transcriber.Model,
		mode:       cfg.Transcriber.Mode,
		logger:     logger,
	}
	if c.mode == ModeChat {
		c.labeler = NewLabeler(cfg, logger)
	}
	return c
}

// Transcribe uploads the audio file and returns the diarized transcript. In
// chat mode the audio is transcribed to plain text first and a chat model
// assigns the speaker turns.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*domain.RawTranscript, error) {
	if c.mode == ModeChat {
		return c.transcribeWithLabeler(ctx, audioPath)
	}
	return c.transcribeDiarized(ctx, audioPath)
}

func (c *Client) transcribeDiarized(ctx context.Context, audioPath string) (*domain.RawTranscript, error) {
	body, err := c.post(ctx, audioPath, "diarized_json")
	if err != nil {
		return nil, err
	}

	var resp diarizedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode diarized response: %w", err)
	}

	raw := &domain.RawTranscript{
		Text:     resp.Text,
		Duration: resp.Duration,
		Segments: make([]domain.RawSegment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		raw.Segments = append(raw.Segments, domain.RawSegment{
			Speaker:   seg.Speaker,
			Text:      seg.Text,
			Start:     seg.Start,
			End:       seg.End,
			HasTiming: seg.End > 0,
		})
	}
	return raw, nil
}

func (c *Client) transcribeWithLabeler(ctx context.Context, audioPath string) (*domain.RawTranscript, error) {
	body, err := c.post(ctx, audioPath, "text")
	if err != nil {
		return nil, err
	}

	text := string(bytes.TrimSpace(body))
	if text == "" {
		return nil, fmt.Errorf("transcription returned empty text")
	}

	segments, err := c.labeler.Label(ctx, text)
	if err != nil {
		return nil, err
	}

	return &domain.RawTranscript{Text: text, Segments: segments}, nil
}

func (c *Client) post(ctx context.Context, audioPath, responseFormat string) ([]byte, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"model", c.model},
		{"response_format", responseFormat},
		{"chunking_strategy", "auto"},
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info().
		Str("model", c.model).
		Str("response_format", responseFormat).
		Str("file", filepath.Base(audioPath)).
		Msg("Calling transcription API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error: status %d: %s", resp.StatusCode, truncate(body, 512))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
