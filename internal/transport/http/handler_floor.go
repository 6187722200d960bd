package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tableflow/internal/app/floor"

	"github.com/go-chi/chi/v5"
)

type FloorHandlers struct {
	svc *floor.Service
}

func NewFloorHandlers(svc *floor.Service) *FloorHandlers {
	return &FloorHandlers{svc: svc}
}

func (h *FloorHandlers) Tables() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, h.svc.Tables())
	}
}

func (h *FloorHandlers) Open() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req floor.OpenRequest
		if err := decodeOptionalJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		resp, err := h.svc.OpenTable(r.Context(), chi.URLParam(r, "number"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req floor.CloseRequest
		if err := decodeOptionalJSON(r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		resp, err := h.svc.CloseTable(r.Context(), chi.URLParam(r, "number"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.CancelScheduledOpen(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.HistoryData(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) DeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.ResetAll(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) UpcomingBreaks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.UpcomingBreaks(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (h *FloorHandlers) TrialRotations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, h.svc.TrialRotations())
	}
}

// decodeOptionalJSON decodes a JSON body into v; an empty body leaves v as is.
func decodeOptionalJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, floor.ErrTableNotFound):
		WriteHTTPError(w, http.StatusNotFound, "table_not_found", err.Error())
	case errors.Is(err, floor.ErrSessionNotFound):
		WriteHTTPError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, floor.ErrTableAlreadyOpen):
		WriteHTTPError(w, http.StatusConflict, "table_already_open", err.Error())
	case errors.Is(err, floor.ErrTableNotOpen):
		WriteHTTPError(w, http.StatusConflict, "table_not_open", err.Error())
	case errors.Is(err, floor.ErrSessionNotDeletable):
		WriteHTTPError(w, http.StatusConflict, "session_not_deletable", err.Error())
	case errors.Is(err, floor.ErrInvalidCloseTime):
		WriteHTTPError(w, http.StatusUnprocessableEntity, "invalid_close_time", err.Error())
	case errors.Is(err, floor.ErrInvalidRegime), errors.Is(err, floor.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
