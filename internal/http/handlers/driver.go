package handlers

import (
	"net/http"
	"strconv"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// DriverHandler serves HTTP endpoints for driver resources.
type DriverHandler struct {
	uc       driverUsecase
	tracking trackingUsecase
	logger   logx.Logger
}

// NewDriverHandler wires driver use cases into HTTP handlers.
func NewDriverHandler(logger logx.Logger, uc driverUsecase, tracking trackingUsecase) *DriverHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DriverHandler{uc: uc, tracking: tracking, logger: logger}
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.uc.Register(r.Context(), req.Name, req.Phone)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/drivers/"+strconv.FormatInt(d.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, driverToResponse(d))
}

// GetByID handles GET /drivers/{id}.
func (h *DriverHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(d))
}

// List handles GET /drivers?available=&limit=&offset=.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	f := domain.DriverFilter{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid available")
			return
		}
		f.Available = &v
	}

	list, err := h.uc.List(r.Context(), f)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driversToResponse(list))
}

// PushLocation handles POST /drivers/{id}/location.
func (h *DriverHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req locationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	var at time.Time
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}
	stored, err := h.tracking.PushDriverPosition(r.Context(), id, req.Point, at)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusAccepted, locationResponse{Stored: stored})
}
