package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/geonovis/geonovis/internal/domain/session"
)

// maxSessionBody caps session request bodies.
const maxSessionBody = 1 << 20

// DecodeRequest is the body of POST /api/session/decode.
type DecodeRequest struct {
	Content string `json:"content"`
}

// DecodeResult is the response of POST /api/session/decode.
type DecodeResult struct {
	Content any `json:"content"`
}

func (s *Server) handleSessionEncode(w http.ResponseWriter, r *http.Request) {
	quality := session.DefaultQuality
	if q := r.URL.Query().Get("quality"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid quality parameter", err.Error())
			return
		}
		quality = n
	}

	var data any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSessionBody)).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	enc, err := session.Encode(data, quality)
	if err != nil {
		s.logger.Error("session encode failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode session", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (s *Server) handleSessionDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSessionBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Missing content", "Please provide the encoded session in the content field")
		return
	}

	v, err := session.Decode(req.Content)
	if err != nil {
		body := errorBody{Error: "Invalid session token", Details: err.Error()}
		var de *session.DecodeError
		if errors.As(err, &de) {
			body.Stage = string(de.Stage)
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}
	writeJSON(w, http.StatusOK, DecodeResult{Content: v})
}
