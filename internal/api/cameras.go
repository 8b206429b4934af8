package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-eufy/internal/audit"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy"
)

// commandRequest is the body of POST /cameras/{serial}/commands.
type commandRequest struct {
	ID         string         `json:"id,omitempty"`
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// handleListCameras returns the cached state of every camera.
func (s *Server) handleListCameras(w http.ResponseWriter, _ *http.Request) {
	cams := s.cameras.Cameras()
	writeJSON(w, http.StatusOK, map[string]any{
		"cameras": cams,
		"count":   len(cams),
	})
}

// handleGetCamera returns the cached state of one camera.
func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	cam, ok := s.cameras.Camera(serial)
	if !ok {
		writeNotFound(w, "camera not found")
		return
	}
	writeJSON(w, http.StatusOK, cam)
}

// handleCameraCommand runs a command synchronously and returns its
// acknowledgement. The HTTP status reflects the acknowledgement's error code.
func (s *Server) handleCameraCommand(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return
		}
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "command is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ack := s.cameras.Execute(r.Context(), eufy.CommandMessage{
		ID:         req.ID,
		Timestamp:  time.Now().UTC(),
		Serial:     serial,
		Command:    req.Command,
		Parameters: req.Parameters,
		Source:     audit.SourceAPI,
		UserID:     subjectFrom(r.Context()),
	})

	writeJSON(w, ackStatus(ack), ack)
}

// ackStatus maps an acknowledgement onto an HTTP status code.
func ackStatus(ack eufy.AckMessage) int {
	if ack.Error == nil {
		return http.StatusOK
	}
	switch ack.Error.Code {
	case eufy.ErrCodeInvalidCommand, eufy.ErrCodeInvalidParameters:
		return http.StatusBadRequest
	case eufy.ErrCodeNotConfigured:
		return http.StatusNotFound
	case eufy.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
