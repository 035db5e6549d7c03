package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"crowdfund-go/internal/services/projects"
)

const genericErrorMessage = "internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail reports an error that is not a validation problem. Auth errors get
// their own responses; everything else is a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, projects.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, projects.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		msg := err.Error()
		if h.hideErrors {
			msg = genericErrorMessage
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, status int, data page) {
	if err := h.views.render(w, name, status, data); err != nil {
		h.fail(w, r, err)
	}
}
