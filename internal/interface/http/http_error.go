package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// fromDomainError maps a service error onto the HTTP failure contract.
func fromDomainError(err error) *HTTPError {
	message := "something went wrong"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	failure, hasFailure := upstream.As(err)

	httpErr := &HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: message, Err: err}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		httpErr.Status, httpErr.Code = http.StatusBadRequest, "invalid_request"
	case apperrors.CodeNotFound:
		httpErr.Status, httpErr.Code = http.StatusNotFound, "flight_not_found"
	case apperrors.CodeUpstreamError:
		httpErr.Status, httpErr.Code = http.StatusBadGateway, "upstream_error"
	case apperrors.CodeClassifierError:
		httpErr.Status, httpErr.Code = http.StatusInternalServerError, "prediction_failed"
	default:
		if hasFailure && failure.Kind == upstream.KindNotFound {
			httpErr.Status, httpErr.Code, httpErr.Message = http.StatusNotFound, "flight_not_found", "flight not found"
		} else if hasFailure {
			httpErr.Status, httpErr.Code, httpErr.Message = http.StatusBadGateway, "upstream_error", "upstream request failed"
		}
	}

	if hasFailure {
		httpErr.Details = map[string]any{"kind": string(failure.Kind)}
		if httpErr.Status == http.StatusBadGateway {
			httpErr.Details["upstream_status"] = failure.Status
			httpErr.Details["detail"] = failureDetail(failure)
		}
	}
	return httpErr
}

func failureDetail(f *upstream.Failure) string {
	if f.Body != "" {
		return f.Body
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return string(f.Kind)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
