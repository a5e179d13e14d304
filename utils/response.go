package utils

import (
	"encoding/json"
	"net/http"

	"bootcamp-api/query"

	"github.com/rs/zerolog"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Success    bool              `json:"success"`
	Count      *int              `json:"count,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Token      string            `json:"token,omitempty"`
	Data       interface{}       `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Respond writes {success: true, data}.
func Respond(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// RespondList writes {success: true, count, pagination, data}. A nil pagination is omitted.
func RespondList(w http.ResponseWriter, data interface{}, count int, pagination *query.Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Pagination: pagination, Data: data})
}

// WriteError is the single exit for failed requests: it logs the cause and writes
// {success: false, error} with the translated status.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	er := TranslateError(err)

	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if er.StatusCode >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("kind", string(er.Kind)).
		Int("status", er.StatusCode).
		Str("path", r.URL.Path).
		Msg("request failed")

	WriteJSON(w, er.StatusCode, errorEnvelope{Success: false, Error: er.Message})
}
