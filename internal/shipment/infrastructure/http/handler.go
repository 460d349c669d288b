package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salaheddinesamid/agrisales-back/internal/shipment/application"
	"github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/shipments", h.list)
	r.Get("/shipments/{id}", h.get)
	r.Put("/shipments/{id}/tracker", h.assignTracker)
	r.Delete("/shipments/{id}", h.cancel)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shipments)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) assignTracker(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	var req struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrackingNumber == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.service.AssignTracker(r.Context(), id, req.TrackingNumber); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"trackingNumber": req.TrackingNumber})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	if err := h.service.Cancel(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "shipment has been canceled"})
}

func shipmentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrShipmentNotFound) {
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
