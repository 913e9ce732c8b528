package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil && logger != nil {
		logger.Warn("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	if logger != nil {
		logger.Info("http error",
			logx.String("req_id", reqID(r.Context())),
			logx.Int("status", status),
			logx.String("msg", msg),
		)
	}
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, apperr.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrInactive),
		errors.Is(err, apperr.ErrRatingNotAllowed),
		errors.Is(err, apperr.ErrDuplicateRating),
		errors.Is(err, apperr.ErrAlreadyRunning),
		errors.Is(err, apperr.ErrAlreadyClaimed),
		errors.Is(err, apperr.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, apperr.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, "service unavailable"
	}

	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			logx.String("req_id", reqID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
	}
	writeError(logger, w, r, status, msg)
}

const (
	bodyLimit = 1 << 20
)

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func stringFromURL(r *http.Request, name string) (string, error) {
	s := strings.TrimSpace(chi.URLParam(r, name))
	if s == "" {
		return "", errors.New("invalid id")
	}
	return s, nil
}

// paging reads optional non-negative limit and offset query parameters.
func paging(r *http.Request) (limit, offset *int, err error) {
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil || v < 0 {
			return nil, nil, errors.New("invalid limit")
		}
		limit = &v
	}
	if s := q.Get("offset"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil || v < 0 {
			return nil, nil, errors.New("invalid offset")
		}
		offset = &v
	}
	return limit, offset, nil
}
