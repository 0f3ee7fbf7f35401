package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	// Fields maps a request field (by its JSON name) to what is wrong with it.
	Fields map[string]string
	// Redirect is where the browser should navigate instead, if anywhere.
	Redirect string
	Err      error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields

	return e
}

func (e *AppError) WithRedirect(path string) *AppError {
	e.Redirect = path

	return e
}

// Retryable reports whether repeating the same request may succeed.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case ErrCodeSubmissionFailed, ErrCodeSubmissionTimeout, ErrCodeThirdPartyError:
		return true
	}

	return false
}

const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeTooManyRequests      = "TOO_MANY_REQUESTS"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeThirdPartyError      = "THIRD_PARTY_ERROR"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	ErrCodeSubmissionFailed     = "SUBMISSION_FAILED"
	ErrCodeSubmissionTimeout    = "SUBMISSION_TIMEOUT"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusBadGateway)
}

func EmptyCartError(message string) *AppError {
	return NewAppError(ErrCodeEmptyCart, message, http.StatusConflict)
}

func InvalidTransitionError(message string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, message, http.StatusConflict)
}

func SubmissionInProgressError(message string) *AppError {
	return NewAppError(ErrCodeSubmissionInProgress, message, http.StatusConflict)
}

func SubmissionFailedError(message string) *AppError {
	return NewAppError(ErrCodeSubmissionFailed, message, http.StatusBadGateway)
}

func SubmissionTimeoutError(message string) *AppError {
	return NewAppError(ErrCodeSubmissionTimeout, message, http.StatusGatewayTimeout)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason)).
		WithFields(map[string]string{field: reason})
}
