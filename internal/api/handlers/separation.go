package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"separation-route-service/internal/api/dto"
	"separation-route-service/internal/domain"
	"separation-route-service/internal/services"
)

type SeparationHandler struct {
	Separation *services.SeparationService
}

// Start opens a separation session, or returns the one already running.
// The operator screen always renders server state.
func (h *SeparationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sess, err := h.Separation.StartSession(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoRoutes) {
			writeError(w, r, http.StatusConflict, "no packages to separate")
			return
		}
		log.Printf("start separation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.StartSeparationResponse{
		Session: sessionPayload(sess),
	})
}

// Scan resolves one barcode against the active session. A repeated
// barcode resolves again without advancing the count; an unknown one
// is a 404 and leaves the session untouched.
func (h *SeparationHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ScanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	sess, err := h.Separation.ActiveSession(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			writeError(w, r, http.StatusConflict, "no active separation session")
			return
		}
		log.Printf("load active session failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result, progress, err := h.Separation.ResolveScan(r.Context(), sess.SessionID, req.Barcode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBarcode):
			writeError(w, r, http.StatusBadRequest, "barcode is required")
		case errors.Is(err, services.ErrUnknownBarcode):
			writeError(w, r, http.StatusNotFound, "package not found in any route")
		case errors.Is(err, services.ErrNoActiveSession):
			writeError(w, r, http.StatusConflict, "no active separation session")
		default:
			log.Printf("resolve scan failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ScanResponse{
		Barcode:       result.Barcode,
		RouteID:       result.RouteID,
		RouteColor:    result.RouteColor,
		DelivererName: result.DelivererName,
		Sequence:      result.Sequence,
		TotalInRoute:  result.TotalInRoute,
		Address:       result.Address,
		Progress: dto.ProgressPayload{
			Scanned:    progress.Scanned,
			Percentage: progress.Percentage,
		},
	})
}

// Complete finalizes the active session once every package is scanned.
func (h *SeparationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sess, err := h.Separation.ActiveSession(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			writeError(w, r, http.StatusConflict, "no active separation session")
			return
		}
		log.Printf("load active session failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Separation.CompleteSession(r.Context(), sess.SessionID); err != nil {
		if errors.Is(err, services.ErrSessionIncomplete) {
			writeError(w, r, http.StatusConflict, "separation is not complete")
			return
		}
		log.Printf("complete separation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "completed"})
}

func sessionPayload(sess *domain.SeparationSession) dto.SessionPayload {
	return dto.SessionPayload{
		SessionID:       sess.SessionID,
		TotalPackages:   sess.TotalPackages,
		ScannedPackages: sess.ScannedPackages,
		Progress:        sess.Progress(),
	}
}
