package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
	"github.com/xavjones8/On-Device-Models-Playground/internal/research"
)

type classifyRequest struct {
	Prompt string `json:"prompt"`
}

type fetchRequest struct {
	Ticker string `json:"ticker"`
	Range  string `json:"range"`
}

type fetchResponse struct {
	Ticker string           `json:"ticker"`
	Range  string           `json:"range"`
	Points int              `json:"points"`
	First  marketdata.Point `json:"first"`
	Last   marketdata.Point `json:"last"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "prompt is empty")
		return
	}

	decision, err := s.router.Route(r.Context(), req.Prompt)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, decision)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rng := marketdata.DefaultRange
	if req.Range != "" {
		parsed, err := marketdata.ParseTimeRange(req.Range)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, err.Error())
			return
		}
		rng = parsed
	}

	series, err := s.session.Fetch(r.Context(), req.Ticker, rng)
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, fetchResponse{
		Ticker: series.Ticker,
		Range:  string(series.Range),
		Points: series.Len(),
		First:  series.First(),
		Last:   series.Last(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.session.Metrics(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, summary)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	points := 0
	if raw := r.URL.Query().Get("points"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "points must be an integer")
			return
		}
		points = parsed
	}

	chart, err := s.session.Chart(r.Context(), chi.URLParam(r, "ticker"), points)
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, chart)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Report(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"report": report})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	cmp, err := s.session.Compare(r.Context(), a, b)
	if err != nil {
		writeError(r.Context(), w, statusFor(err), err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, cmp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	cleared := len(s.session.CachedTickers())
	s.session.Reset(r.Context())
	writeJSON(r.Context(), w, http.StatusOK, map[string]int{"cleared": cleared})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.session.ID(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// statusFor maps session errors to HTTP statuses: asking for an unfetched
// ticker is a conflict with the two-phase contract, a bad ticker is the
// caller's fault, anything else is an upstream provider failure.
func statusFor(err error) int {
	var notFetched *research.NotFetchedError
	switch {
	case errors.As(err, &notFetched):
		return http.StatusConflict
	case errors.Is(err, marketdata.ErrEmptyTicker):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.ErrorWithErr(ctx, "Failed to encode JSON response", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"error": message})
}
