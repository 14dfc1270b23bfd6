package router

import (
	"net/http"

	"audio-transcriber/internal/http-server/handler/transcript"
	"audio-transcriber/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TranscriptHandler *transcript.TranscriptHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/transcripts", func(r chi.Router) {
			r.Post("/transcribe", h.TranscriptHandler.Transcribe)

			r.Route("/jobs", func(r chi.Router) {
				r.Post("/", h.TranscriptHandler.SubmitJob)
				r.Get("/{id}", h.TranscriptHandler.GetJobStatus)
				r.Get("/{id}/result", h.TranscriptHandler.GetJobResult)
			})

			r.Post("/export/{format}", h.TranscriptHandler.Export)
			r.Post("/email", h.TranscriptHandler.SendEmail)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
