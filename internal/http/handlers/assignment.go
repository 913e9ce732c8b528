package handlers

import (
	"net/http"

	"delivery-dispatch/internal/logx"
)

// AssignmentHandler exposes control of the matching loop.
type AssignmentHandler struct {
	ctl    dispatchControl
	logger logx.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(logger logx.Logger, ctl dispatchControl) *AssignmentHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AssignmentHandler{ctl: ctl, logger: logger}
}

// Start handles POST /assignment/start.
func (h *AssignmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.StartAutomatic(); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	h.logger.Info("automatic matching started", logx.String("event", "dispatch_started"))
	writeJSON(h.logger, w, r, http.StatusOK, h.status())
}

// Stop handles POST /assignment/stop.
func (h *AssignmentHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.ctl.StopAutomatic()
	h.logger.Info("automatic matching stopped", logx.String("event", "dispatch_stopped"))
	writeJSON(h.logger, w, r, http.StatusOK, h.status())
}

// Manual handles POST /assignment/manual.
func (h *AssignmentHandler) Manual(w http.ResponseWriter, r *http.Request) {
	n, err := h.ctl.TriggerManual(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, manualPassResponse{Assigned: n})
}

// Status handles GET /assignment/status.
func (h *AssignmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, r, http.StatusOK, h.status())
}

func (h *AssignmentHandler) status() assignmentStatusResponse {
	st := h.ctl.Status()
	return assignmentStatusResponse{State: string(st.State), Interval: st.Interval.String()}
}
