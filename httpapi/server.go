// Package httpapi exposes the analysis pipeline over HTTP: job submission
// and queries, plus thin repository passthroughs for clients that want raw
// upstream data without running an analysis.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/firstpr/firstpr/jobs"
	"github.com/firstpr/firstpr/pipeline"
)

const tokenHeader = "X-GitHub-Token"

type Server struct {
	Orch  *pipeline.Orchestrator
	Store jobs.Store
	Fetch pipeline.Fetcher
}

func (s Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Get("/analyze/{id}/status", s.handleStatus)
	r.Get("/analyze/{id}/result", s.handleResult)

	r.Get("/repos/{owner}/{repo}/readme", s.handleReadme)
	r.Get("/repos/{owner}/{repo}/tree", s.handleTree)
	r.Get("/rate_limit", s.handleRateLimit)

	return r
}

type analyzeRequest struct {
	Repo string `json:"repo"`
	Ref  string `json:"ref,omitempty"`
}

func (s Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Repo) == "" {
		writeErr(w, http.StatusBadRequest, errors.New("repo is required"))
		return
	}

	job, err := s.Orch.Submit(r.Context(), pipeline.Request{
		Repo:  req.Repo,
		Ref:   req.Ref,
		Token: r.Header.Get(tokenHeader),
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("submit job: %w", err))
		return
	}

	writeJSON(w, http.StatusAccepted, statusResponse(job))
}

func (s Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(job))
}

func (s Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.Store.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			writeErr(w, http.StatusNotFound, err)
		case errors.Is(err, jobs.ErrNotReady):
			writeErr(w, http.StatusConflict, err)
		default:
			writeErr(w, http.StatusInternalServerError, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

func (s Server) handleReadme(w http.ResponseWriter, r *http.Request) {
	owner, repo := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	content, err := s.Fetch.FileContent(r.Context(), owner, repo, "README.md", r.Header.Get(tokenHeader))
	if err != nil || content == "" {
		writeErr(w, http.StatusNotFound, errors.New("README not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (s Server) handleTree(w http.ResponseWriter, r *http.Request) {
	owner, repo := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = "main"
	}
	tree, err := s.Fetch.Tree(r.Context(), owner, repo, ref, r.Header.Get(tokenHeader))
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": tree})
}

// handleRateLimit reports the live upstream quota so operators can see how
// much headroom analyses have left.
func (s Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	remaining, resetAt, err := s.Fetch.RateLimitStatus(r.Context(), r.Header.Get(tokenHeader))
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("rate limit status: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"remaining": remaining,
		"reset_at":  resetAt.UTC().Format(time.RFC3339),
	})
}

func statusResponse(job jobs.Job) map[string]any {
	resp := map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = job.CompletedAt
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}
