package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteErrorWithRequestID is WriteError with the request id echoed back so
// clients can correlate failures with server logs.
func WriteErrorWithRequestID(w http.ResponseWriter, status int, code, message, requestID string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Meta:      meta,
	})
}
