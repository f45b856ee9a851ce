package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Error struct {
	Code int    `json:"code"`
	Text string `json:"text,omitempty"`
}

func ErrorWithCode(w http.ResponseWriter, httpCode, appCode int) {
	writeJSON(w, httpCode, Error{Code: appCode})
}

func RespondErrorWithText(w http.ResponseWriter, httpCode, appCode int, errText string) {
	writeJSON(w, httpCode, Error{Code: appCode, Text: errText})
}

func JSON(w http.ResponseWriter, v interface{}) {
	writeJSON(w, http.StatusOK, v)
}

func Created(w http.ResponseWriter, v interface{}) {
	writeJSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, httpCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}
