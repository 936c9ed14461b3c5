// Package httpapi is the faucet's HTTP surface (C9): route table,
// request-ID tagging, the uniform response envelope, CORS, and the
// health/keepalive probes. It depends on every other component but is
// depended on by none — composition happens here, in cmd/faucetd.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform response shape for every endpoint in this
// surface (spec.md §6).
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// ErrorBody carries the error code and optional details of a failed
// request.
type ErrorBody struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeSuccessMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, Envelope{Success: false, Message: code, Error: &ErrorBody{Code: code, Details: details}})
}
