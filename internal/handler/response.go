package handler

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same envelope so clients branch on the
// status field instead of sniffing payload shapes.
type envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    any          `json:"data"`
	Error   *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	env := envelope{Status: "ok", Data: data}
	if status >= 400 {
		env.Status = "error"
		env.Error = &errorDetail{Code: status, Status: http.StatusText(status)}
	}
	writeRawJSON(w, status, env)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, envelope{
		Status:  "error",
		Message: message,
		Error:   &errorDetail{Code: status, Status: http.StatusText(status)},
	})
}

func writeErrorWithErr(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case err == nil:
		writeError(w, status, message)
	case message == "":
		writeError(w, status, err.Error())
	default:
		writeError(w, status, message+": "+err.Error())
	}
}
