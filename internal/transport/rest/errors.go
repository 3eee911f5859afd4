package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
)

var (
	errRateLimited = errors.New("too many order placements, retry later")
	errNoImage     = errors.New("product has no image")

	errImageIDRequired = errors.New("imageId is required")
)

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Timestamp   time.Time        `json:"timestamp"`
	Status      int              `json:"status"`
	Error       string           `json:"error"`
	Message     string           `json:"message"`
	Path        string           `json:"path"`
	FieldErrors []fieldErrorBody `json:"fieldErrors,omitempty"`
}

// statusFor сопоставляет доменную ошибку HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case domain.IsNotFound(err), errors.Is(err, errNoImage):
		return http.StatusNotFound
	case domain.IsInsufficientStock(err),
		domain.IsBadOrderState(err),
		domain.IsVersionConflict(err),
		domain.IsIdempotencyConflict(err),
		errors.Is(err, domain.ErrProductExists),
		errors.Is(err, idempotency.ErrRequestInProgress):
		return http.StatusConflict
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{
		Timestamp: h.now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Path:      r.URL.Path,
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			body.FieldErrors = append(body.FieldErrors, fieldErrorBody{Field: f.Field, Message: f.Err.Error()})
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		body.Message = "internal error"
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func invalidParam(field string, err error) error {
	return &domain.ValidationError{Fields: []domain.FieldError{{Field: field, Err: err}}}
}
