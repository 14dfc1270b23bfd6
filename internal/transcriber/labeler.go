package transcriber

import (
	"context"
	"encoding/json"
	"fmt"

	"audio-transcriber/internal/config"
	"audio-transcriber/internal/domain"

	openai "github.com/sashabaranov/go-openai"
	"github.com/wb-go/wbf/zlog"
)

const labelerSystemPrompt = `You are a transcript formatter. Take a meeting transcript and format it with clear speaker labels.

Rules:
1. Identify distinct speakers based on conversational patterns, context, and speaking styles
2. Label speakers as "Speaker 1", "Speaker 2", etc.
3. Format the output as a JSON object: {"segments": [{"speaker": "Speaker 1", "text": "what they said"}, ...]}
4. Merge consecutive segments from the same speaker
5. Keep the text faithful to the original - don't paraphrase
6. Attribute interjections like "Mm-hmm", "Right", "Yeah" to the appropriate speaker based on context

Return ONLY valid JSON, no other text.`

// Labeler assigns speaker turns to a plain-text transcript using a chat
// model. Used when the transcription model is asked for text output instead
// of the diarized format.
type Labeler struct {
	client *openai.Client
	model  string
	logger *zlog.Zerolog
}

type labeledSegments struct {
	Segments []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	} `json:"segments"`
}

func NewLabeler(cfg *config.Config, logger *zlog.Zerolog) *Labeler {
	clientCfg := openai.DefaultConfig(cfg.Transcriber.APIKey)
	clientCfg.BaseURL = cfg.Transcriber.BaseURL

	return &Labeler{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Transcriber.ChatModel,
		logger: logger,
	}
}

// Label splits transcript text into speaker turns. Segments come back
// without timestamps; the chat model has no timing information.
func (l *Labeler) Label(ctx context.Context, transcript string) ([]domain.RawSegment, error) {
	l.logger.Info().Str("model", l.model).Msg("Identifying speakers with chat model")

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: labelerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Here is a meeting transcript. Identify the speakers and format it as JSON:\n\n" + transcript},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("speaker labeling failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("speaker labeling returned no choices")
	}

	var parsed labeledSegments
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode labeled segments: %w", err)
	}

	segments := make([]domain.RawSegment, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		segments = append(segments, domain.RawSegment{
			Speaker: seg.Speaker,
			Text:    seg.Text,
		})
	}
	return segments, nil
}
