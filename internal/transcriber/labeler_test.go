package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wb-go/wbf/zlog"
)

func TestChatModeLabelsSpeakers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio/transcriptions":
			if got := r.FormValue("response_format"); got != "text" {
				t.Errorf("expected text response format in chat mode, got %q", got)
			}
			w.Write([]byte("Hello. Hi there."))
		case "/chat/completions":
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.Model != "gpt-4o" {
				t.Errorf("expected gpt-4o, got %q", req.Model)
			}
			if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Hello. Hi there.") {
				t.Errorf("expected transcript in user message, got %+v", req.Messages)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"choices": [{"message": {"role": "assistant", "content": "{\"segments\": [{\"speaker\": \"Speaker 1\", \"text\": \"Hello.\"}, {\"speaker\": \"Speaker 2\", \"text\": \"Hi there.\"}]}"}}]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Transcriber.Mode = ModeChat
	cfg.Transcriber.ChatModel = "gpt-4o"

	client := New(cfg, &zlog.Logger)

	raw, err := client.Transcribe(context.Background(), writeAudioFixture(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}

	if raw.Text != "Hello. Hi there." {
		t.Errorf("unexpected text %q", raw.Text)
	}
	if len(raw.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(raw.Segments))
	}
	if raw.Segments[0].Speaker != "Speaker 1" || raw.Segments[1].Speaker != "Speaker 2" {
		t.Errorf("unexpected speakers: %+v", raw.Segments)
	}
	if raw.Segments[0].HasTiming {
		t.Error("chat mode segments should carry no timing")
	}
}

func TestChatModeMalformedLabelerOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio/transcriptions":
			w.Write([]byte("some transcript"))
		case "/chat/completions":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "not json"}}]}`))
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Transcriber.Mode = ModeChat
	cfg.Transcriber.ChatModel = "gpt-4o"

	client := New(cfg, &zlog.Logger)

	if _, err := client.Transcribe(context.Background(), writeAudioFixture(t)); err == nil {
		t.Fatal("expected error for undecodable labeler output")
	}
}

func TestChatModeEmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/audio/transcriptions" {
			w.Write([]byte("   "))
			return
		}
		t.Error("labeler should not be called for empty transcript")
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Transcriber.Mode = ModeChat

	client := New(cfg, &zlog.Logger)

	if _, err := client.Transcribe(context.Background(), writeAudioFixture(t)); err == nil {
		t.Fatal("expected error for empty transcription text")
	}
}
