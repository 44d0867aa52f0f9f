package http

import (
	"errors"
	"log/slog"
	"net/http"

	"parcelshare/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func newErrorBody(code int, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message}
}

// statusOf maps the domain error taxonomy to an HTTP status. Order matters:
// AssignmentNotNegotiable also matches InvalidState.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAssignmentNotNegotiable),
		errors.Is(err, errs.ErrChecklistIncomplete),
		errors.Is(err, errs.ErrPackageIncompatibleToTrip):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrConcurrentModification),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrInsufficientTripCapacity),
		errors.Is(err, errs.ErrSettlementPrecondition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrPaymentAuthorization):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrSettlementFailed):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(status int, err error) string {
	switch status {
	case http.StatusConflict:
		if errors.Is(err, errs.ErrConcurrentModification) {
			return "this assignment changed, please refresh"
		}
		return err.Error()
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}

func detailsOf(err error) []string {
	var checklist *errs.ChecklistIncompleteError
	if errors.As(err, &checklist) {
		return checklist.Missing
	}
	return nil
}

// errorHandler replaces echo's default so domain errors returned from
// handlers become ErrorBody responses.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			message := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				message = m
			}
			_ = c.JSON(he.Code, newErrorBody(he.Code, message))
			return
		}

		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}

		body := newErrorBody(status, messageOf(status, err))
		body.Details = detailsOf(err)
		_ = c.JSON(status, body)
	}
}
