package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nikhilbhutani/longscribe/internal/usage"
)

type AdminHandler struct {
	usage *usage.Recorder
}

func NewAdminHandler(rec *usage.Recorder) *AdminHandler {
	return &AdminHandler{usage: rec}
}

// Usage reports aggregate run statistics for a trailing window
// (?days=N, default 30).
func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	summary, err := h.usage.Usage(r.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
