package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/whichguy/sheetql/query"
)

// executeRequest is the body of POST /v1/execute.
type executeRequest struct {
	Statement string                     `json:"statement"`
	Location  string                     `json:"location,omitempty"`
	Tables    map[string][][]interface{} `json:"tables,omitempty"`
	Metadata  bool                       `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	resp, err := s.engine.Execute(r.Context(), query.Request{
		Statement: req.Statement,
		Location:  req.Location,
		Tables:    req.Tables,
		Metadata:  req.Metadata,
	})
	if err != nil {
		status := statusFor(err)
		s.log.Warn().
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Err(err).
			Msg("execute failed")
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps the engine's error taxonomy onto HTTP status codes: caller
// mistakes are 400, remote failures 502, everything else 500.
func statusFor(err error) int {
	var syn *query.SyntaxError
	var val *query.ValidationError
	var rem *query.RemoteError
	switch {
	case errors.As(err, &syn), errors.As(err, &val):
		return http.StatusBadRequest
	case errors.As(err, &rem):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
