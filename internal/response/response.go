// Package response writes JSON bodies and maps domain errors to HTTP statuses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/fekuna/omnipos-replenishment-service/internal/apperr"
	"github.com/fekuna/omnipos-replenishment-service/pkg/i18n"
)

const (
	CodeNotFound      = "not_found"
	CodeForbidden     = "forbidden"
	CodeInternalError = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Kind  string `json:"kind"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuthFailure:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {error, code, kind}. Messages are localized when the
// request carries an Accept-Language header. Errors outside the taxonomy
// never leak their text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, apperr.KindInternal, CodeInternalError, "internal error")
		return
	}
	WriteError(w, r, StatusOf(e.Kind), e.Kind, e.Code, e.Message)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, kind apperr.Kind, code, msg string) {
	if lang := r.Header.Get("Accept-Language"); lang != "" {
		msg = i18n.Translate(code, msg, lang)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{Error: msg, Code: code, Kind: string(kind)})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error","kind":"internal"}`))
		return
	}
	_, _ = w.Write(payload)
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, apperr.KindNotFound, CodeNotFound, "not found")
	})
}
