package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"client_registry/internal/domain"
)

const (
	codeInternal  = "INTERNAL_SERVER_ERROR"
	codeForbidden = "FORBIDDEN"
)

// envelope - успешный ответ с одной записью.
type envelope struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Timestamp  time.Time   `json:"timestamp"`
}

type errorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{
		Message:    message,
		StatusCode: status,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	})
}

// statusFor - HTTP-статус для кода ошибки.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeMissingArgument, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError отвечает ошибкой. Ошибки без кода считаются внутренними,
// их текст не отдается клиенту.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		writeJSON(w, statusFor(derr.Code), errorResponse{
			Error:   derr.Message,
			Code:    string(derr.Code),
			Details: derr.Fields,
		})
		return
	}

	h.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "Internal server error",
		Code:  codeInternal,
	})
}
