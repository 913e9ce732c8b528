package handlers

import (
	"net/http"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase  deliveryUsecase
	tracking trackingUsecase
	logger   logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase, tracking trackingUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{usecase: uc, tracking: tracking, logger: logger}
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/deliveries/"+d.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, deliveryToResponse(d))
}

// List handles GET /deliveries?status=&limit=&offset=.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	f := domain.DeliveryFilter{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.Status(s)
		if !st.Valid() {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = &st
	}

	list, err := h.usecase.List(r.Context(), f)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveriesToResponse(list))
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := stringFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// ChangeStatus handles POST /deliveries/{id}/status.
func (h *DeliveryHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := stringFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req changeStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	target := domain.Status(req.Status)
	if !target.Valid() {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
		return
	}
	actor := req.actor()
	if !actor.Kind.Valid() {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid actor")
		return
	}

	d, err := h.usecase.Transition(r.Context(), id, target, actor)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// PushLocation handles POST /deliveries/{id}/location.
func (h *DeliveryHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	id, err := stringFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req locationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "driver_id is required")
		return
	}

	var at time.Time
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}
	stored, err := h.tracking.PushLocation(r.Context(), domain.LocationUpdate{
		DeliveryID: id,
		DriverID:   req.DriverID,
		Point:      req.Point,
		At:         at,
	})
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusAccepted, locationResponse{Stored: stored})
}

// Rate handles POST /deliveries/{id}/rating.
func (h *DeliveryHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := stringFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req rateRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.Rate(r.Context(), id, req.Rating)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}
