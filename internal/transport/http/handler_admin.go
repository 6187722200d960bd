package httptransport

import (
	"bytes"
	"net/http"
	"strconv"

	"tableflow/internal/app/floor"
	"tableflow/internal/export"
	"tableflow/internal/kvstore"

	"github.com/rs/zerolog/log"
)

// AdminHandlers serve health and the day's downloadable exports.
type AdminHandlers struct {
	svc   *floor.Service
	store kvstore.Store
}

func NewAdminHandlers(svc *floor.Service, st kvstore.Store) *AdminHandlers {
	return &AdminHandlers{svc: svc, store: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := kvstore.Ping(r.Context(), h.store); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "store": "down"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "store": "up"})
	}
}

func (h *AdminHandlers) TimelineXLSX() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid, err := h.svc.Timeline(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteTimelineXLSX(&buf, grid); err != nil {
			log.Error().Err(err).Str("gaming_day", grid.Day).Msg("render timeline failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.TimelineFilename(grid.Day), buf.Bytes())
	}
}

func (h *AdminHandlers) BackupText() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backup, err := h.svc.BackupLog(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteBackup(&buf, backup.GamingDay, backup.Entries, backup.GeneratedAt, backup.Location); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		writeAttachment(w, "text/plain; charset=utf-8", export.BackupFilename(backup.GamingDay), buf.Bytes())
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
