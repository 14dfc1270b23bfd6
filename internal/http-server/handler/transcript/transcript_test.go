package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"audio-transcriber/internal/domain"
	transcript_uc "audio-transcriber/internal/usecase/transcript"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type fakeUsecase struct {
	transcribeResult *domain.TranscriptResult
	transcribeErr    error
	transcribeCalls  int

	job    *domain.TranscriptionJob
	jobErr error

	emailErr error
	emailTo  string
}

func (f *fakeUsecase) Transcribe(ctx context.Context, file io.Reader, filename string, size int64) (*domain.TranscriptResult, error) {
	f.transcribeCalls++
	if f.transcribeErr != nil {
		return nil, f.transcribeErr
	}
	return f.transcribeResult, nil
}

func (f *fakeUsecase) SubmitJob(ctx context.Context, file io.Reader, filename string, size int64, contentType string) (*domain.TranscriptionJob, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *fakeUsecase) GetJob(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *fakeUsecase) GetJobResult(ctx context.Context, id string) (*domain.TranscriptionJob, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *fakeUsecase) EmailTranscript(to, title string, entries []domain.TranscriptEntry) error {
	f.emailTo = to
	return f.emailErr
}

func newTestRouter(usecase transcriptUsecase) http.Handler {
	h := NewTranscriptHandler(usecase, &zlog.Logger)

	r := chi.NewRouter()
	r.Post("/api/transcripts/transcribe", h.Transcribe)
	r.Post("/api/transcripts/jobs", h.SubmitJob)
	r.Get("/api/transcripts/jobs/{id}", h.GetJobStatus)
	r.Get("/api/transcripts/jobs/{id}/result", h.GetJobResult)
	r.Post("/api/transcripts/export/{format}", h.Export)
	r.Post("/api/transcripts/email", h.SendEmail)
	return r
}

func uploadRequest(t *testing.T, path, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(fw, strings.NewReader(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode response %s: %v", body, err)
	}
}

func TestTranscribeRoundTrip(t *testing.T) {
	uc := &fakeUsecase{
		transcribeResult: &domain.TranscriptResult{
			Text: "Hello Hi there",
			Entries: []domain.TranscriptEntry{
				{Speaker: "Speaker 1", Text: "Hello"},
				{Speaker: "Speaker 2", Text: "Hi there"},
			},
		},
	}
	router := newTestRouter(uc)

	rec := doRequest(router, uploadRequest(t, "/api/transcripts/transcribe", "audio", "sample.wav", "RIFFdata"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Text     string `json:"text"`
		Segments []struct {
			Speaker string `json:"speaker"`
			Text    string `json:"text"`
		} `json:"segments"`
	}
	decodeJSON(t, rec.Body.Bytes(), &resp)

	if len(resp.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(resp.Segments))
	}
	if resp.Segments[0].Speaker != "Speaker 1" || resp.Segments[0].Text != "Hello" {
		t.Errorf("unexpected first segment: %+v", resp.Segments[0])
	}
	if resp.Segments[1].Speaker != "Speaker 2" || resp.Segments[1].Text != "Hi there" {
		t.Errorf("unexpected second segment: %+v", resp.Segments[1])
	}
}

func TestTranscribeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid format", transcript_uc.ErrInvalidFileFormat, http.StatusBadRequest},
		{"too large", transcript_uc.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"upstream", fmt.Errorf("%w: timeout", transcript_uc.ErrUpstream), http.StatusBadGateway},
		{"malformed upstream", transcript_uc.ErrMalformedResponse, http.StatusBadGateway},
		{"filesystem", transcript_uc.ErrFilesystem, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeUsecase{transcribeErr: tc.err})

			rec := doRequest(router, uploadRequest(t, "/api/transcripts/transcribe", "audio", "sample.wav", "data"))
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			var resp struct {
				Message string `json:"message"`
			}
			decodeJSON(t, rec.Body.Bytes(), &resp)
			if resp.Message == "" {
				t.Error("expected user-facing message in error response")
			}
			if strings.Contains(rec.Body.String(), "goroutine") {
				t.Error("error response leaks internals")
			}
		})
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	uc := &fakeUsecase{}
	router := newTestRouter(uc)

	rec := doRequest(router, uploadRequest(t, "/api/transcripts/transcribe", "wrong_field", "sample.wav", "data"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if uc.transcribeCalls != 0 {
		t.Errorf("expected no usecase call without audio field, got %d", uc.transcribeCalls)
	}
}

// End-to-end through the real usecase: an unsupported extension never
// reaches the transcriber and leaves no temp file behind.
func TestTranscribeRejectsBadExtensionBeforeUpstream(t *testing.T) {
	tr := &countingTranscriber{}
	tempDir := t.TempDir()
	uc := transcript_uc.NewTranscriptUsecase(tr, &zlog.Logger, tempDir)
	router := newTestRouter(uc)

	rec := doRequest(router, uploadRequest(t, "/api/transcripts/transcribe", "audio", "notes.txt", "hello"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if tr.calls != 0 {
		t.Errorf("expected no upstream call, got %d", tr.calls)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no temp files, found %d", len(entries))
	}
}

type countingTranscriber struct {
	calls int
}

func (c *countingTranscriber) Transcribe(ctx context.Context, audioPath string) (*domain.RawTranscript, error) {
	c.calls++
	return &domain.RawTranscript{Segments: []domain.RawSegment{{Speaker: "A", Text: "hi"}}}, nil
}

func TestJobEndpoints(t *testing.T) {
	job := &domain.TranscriptionJob{ID: "j1", Status: domain.JobCompleted, Entries: []domain.TranscriptEntry{{Speaker: "Speaker 1", Text: "Hello"}}}
	router := newTestRouter(&fakeUsecase{job: job})

	rec := doRequest(router, uploadRequest(t, "/api/transcripts/jobs", "audio", "sample.wav", "data"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/transcripts/jobs/j1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status struct {
		Status string `json:"status"`
	}
	decodeJSON(t, rec.Body.Bytes(), &status)
	if status.Status != "completed" {
		t.Errorf("expected completed, got %s", status.Status)
	}

	rec = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/transcripts/jobs/j1/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Speaker 1") {
		t.Error("expected transcript entries in result")
	}
}

func TestJobErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{transcript_uc.ErrJobNotFound, http.StatusNotFound},
		{transcript_uc.ErrJobNotFinished, http.StatusConflict},
		{transcript_uc.ErrJobsDisabled, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		router := newTestRouter(&fakeUsecase{jobErr: tc.err})
		rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/transcripts/jobs/j1/result", nil))
		if rec.Code != tc.wantStatus {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.wantStatus, rec.Code)
		}
	}
}

func exportBody(t *testing.T) *bytes.Reader {
	t.Helper()
	payload := map[string]interface{}{
		"title": "Standup",
		"segments": []map[string]string{
			{"speaker": "Speaker 1", "text": "Hello"},
			{"speaker": "Speaker 2", "text": "Hi there"},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal export payload: %v", err)
	}
	return bytes.NewReader(b)
}

func TestExportFormats(t *testing.T) {
	router := newTestRouter(&fakeUsecase{})

	cases := []struct {
		format   string
		wantType string
		wantBody string
	}{
		{"text", "text/plain", "Speaker 1:\nHello"},
		{"markdown", "text/markdown", "**Speaker 1:**"},
		{"html", "text/html", `<div class="text">Hi there</div>`},
	}

	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transcripts/export/"+tc.format, exportBody(t))
			rec := doRequest(router, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.wantType) {
				t.Errorf("expected content type %s, got %s", tc.wantType, ct)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
				t.Errorf("expected attachment disposition, got %s", cd)
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	router := newTestRouter(&fakeUsecase{})
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/export/pdf", exportBody(t))
	if rec := doRequest(router, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestSendEmailValidatesAddress(t *testing.T) {
	uc := &fakeUsecase{}
	router := newTestRouter(uc)

	for _, email := range []string{"", "not-an-email", "user@"} {
		body, _ := json.Marshal(map[string]interface{}{"email": email, "title": "Standup"})
		req := httptest.NewRequest(http.MethodPost, "/api/transcripts/email", bytes.NewReader(body))
		if rec := doRequest(router, req); rec.Code != http.StatusBadRequest {
			t.Errorf("email %q: expected 400, got %d", email, rec.Code)
		}
	}
	if uc.emailTo != "" {
		t.Errorf("expected no send attempt for invalid addresses, got %q", uc.emailTo)
	}
}

func TestSendEmailSuccess(t *testing.T) {
	uc := &fakeUsecase{}
	router := newTestRouter(uc)

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "user@example.com",
		"title":    "Standup",
		"segments": []map[string]string{{"speaker": "Speaker 1", "text": "Hello"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/email", bytes.NewReader(body))
	rec := doRequest(router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uc.emailTo != "user@example.com" {
		t.Errorf("expected send to user@example.com, got %q", uc.emailTo)
	}
}

func TestSendEmailDisabled(t *testing.T) {
	router := newTestRouter(&fakeUsecase{emailErr: transcript_uc.ErrEmailDisabled})

	body, _ := json.Marshal(map[string]interface{}{"email": "user@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/email", bytes.NewReader(body))
	if rec := doRequest(router, req); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when email disabled, got %d", rec.Code)
	}
}
