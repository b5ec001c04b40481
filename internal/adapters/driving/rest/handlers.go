package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

type errorResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

type folderRequest struct {
	Path string `json:"path"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type askRequest struct {
	Question string            `json:"question"`
	Where    map[string]string `json:"where,omitempty"`
	K        int               `json:"k,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Stats.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, domain.MsgFilenameRequired)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeMessage(w, http.StatusBadRequest, domain.MsgFilenameRequired)
		return
	}
	if !s.ports.Ingest.Supports(header.Filename) {
		writeMessage(w, http.StatusBadRequest, domain.MsgUnsupportedFile)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}

	res, err := s.ports.Ingest.IngestDocument(r.Context(), raw, header.Filename)
	writeIngest(w, res, err)
}

func (s *Server) handleIngestFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeMessage(w, http.StatusBadRequest, "path is required")
		return
	}

	res, err := s.ports.Ingest.IngestFolder(r.Context(), req.Path)
	writeIngest(w, res, err)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	start, err := s.ports.Dialog.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, start)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.ports.Dialog.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := s.ports.Dialog.SubmitTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decode(w, r, &req) {
		return
	}

	answer, err := s.ports.Ask.Ask(r.Context(), domain.AskRequest{
		Question: req.Question,
		Where:    domain.MetadataFilter(req.Where),
		K:        req.K,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// writeIngest writes a result in its boundary shape with its own status.
func writeIngest(w http.ResponseWriter, res domain.IngestResult, err error) {
	resp := res.Response()
	status := res.StatusCode
	if err != nil {
		if resp.Msg == "" {
			resp.Msg = err.Error()
		}
		if status == 0 || status == http.StatusOK {
			status = domain.StatusFor(err)
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := domain.StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{OK: false, Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
