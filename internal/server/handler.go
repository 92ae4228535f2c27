package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/ukaji3/datavision-go/pkg/datavision/session"
)

// MaxUploadBytes bounds the multipart body of an analyze request.
const MaxUploadBytes = 32 << 20

// Handler serves the analysis and session endpoints.
type Handler struct {
	analyzer session.Analyzer
	streamer llm.Streamer
	sessions *Registry
	language string
	logger   *slog.Logger
}

// NewHandler creates a Handler. New sessions answer in language. A nil
// logger uses slog.Default().
func NewHandler(analyzer session.Analyzer, streamer llm.Streamer, sessions *Registry, language string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		analyzer: analyzer,
		streamer: streamer,
		sessions: sessions,
		language: language,
		logger:   logger,
	}
}

type analyzeResponse struct {
	SessionID string                     `json:"sessionId"`
	FileName  string                     `json:"fileName"`
	Preview   *models.SpreadsheetPreview `json:"preview"`
	Result    *models.AnalysisResult     `json:"result"`
}

// HandleAnalyze extracts and analyzes the uploaded "file" field and
// registers a new session.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	s := session.New(h.language)
	preview, err := s.Extract(header.Filename, file)
	if err != nil {
		h.logger.Info("extraction failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.Analyze(r.Context(), h.analyzer)
	if err != nil {
		h.logger.Warn("analysis failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.sessions.Add(s)
	h.logger.Info("session created", "session", s.ID, "file", header.Filename, "rows", len(preview.SampleRows), "sessions", h.sessions.Len())
	writeJSON(w, http.StatusOK, analyzeResponse{
		SessionID: s.ID,
		FileName:  header.Filename,
		Preview:   preview,
		Result:    result,
	})
}

// HandleSnapshot returns the state of a session.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleDelete resets a session and forgets it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.Reset()
	h.sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorCode maps pipeline errors to the codes sent over WebSocket.
func errorCode(err error) string {
	switch {
	case errors.Is(err, datavision.ErrTurnInFlight):
		return "turn_in_flight"
	case errors.Is(err, datavision.ErrChatTransport):
		return "transport"
	case errors.Is(err, datavision.ErrUnknownLevel), errors.Is(err, datavision.ErrNoResult):
		return "invalid_level"
	default:
		return "invalid_argument"
	}
}
