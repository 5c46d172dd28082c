// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research workflow over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-console/internal/httputil"
	"github.com/pdiddy/research-console/internal/logging"
	"github.com/pdiddy/research-console/internal/research"
	"github.com/pdiddy/research-console/pkg/types"
)

// MsgMissingFields is the 400 body text when a required key is absent.
const MsgMissingFields = "Missing required fields: query, research_question, groq_api_key"

var requiredFields = []string{"query", "research_question", "groq_api_key"}

// Runner executes one research request.
type Runner interface {
	Run(ctx context.Context, req types.ResearchRequest) (research.Outcome, error)
}

// response is the body of a completed research call. Error is null when
// no stage failed.
type response struct {
	Success          bool    `json:"success"`
	Answer           string  `json:"answer"`
	PapersDownloaded int     `json:"papers_downloaded"`
	Error            *string `json:"error"`
}

// New returns the service router.
func New(runner Runner, log *logrus.Logger) http.Handler {
	h := &handler{runner: runner}

	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/research", h.research)
	return r
}

type handler struct {
	runner Runner
}

func (h *handler) research(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorBody{Error: "invalid JSON body"})
		return
	}
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorBody{Error: MsgMissingFields})
			return
		}
	}

	req, err := decodeRequest(raw)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, types.ErrorBody{Error: err.Error()})
		return
	}

	out, err := h.runner.Run(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("research run failed")
		httputil.WriteJSON(w, http.StatusInternalServerError, types.ErrorBody{Error: err.Error()})
		return
	}

	resp := response{
		Success:          true,
		Answer:           out.Answer,
		PapersDownloaded: out.PapersDownloaded,
	}
	if out.Err != "" {
		resp.Error = &out.Err
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// decodeRequest fills a request from the decoded body. Defaults apply
// only to optional fields that are absent or null; explicit values are
// passed through.
func decodeRequest(raw map[string]json.RawMessage) (types.ResearchRequest, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return types.ResearchRequest{}, err
	}
	var req types.ResearchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return types.ResearchRequest{}, err
	}
	if v, ok := raw["max_results"]; !ok || string(v) == "null" {
		req.MaxResults = types.DefaultMaxResults
	}
	if req.ModelName == "" {
		req.ModelName = types.DefaultModel
	}
	return req, nil
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := log.WithFields(logrus.Fields{
				"request_id": uuid.NewString(),
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logging.WithEntry(r.Context(), entry)))

			entry.WithFields(logrus.Fields{
				"status":   ww.Status(),
				"duration": time.Since(start).Round(time.Millisecond).String(),
			}).Info("request handled")
		})
	}
}
