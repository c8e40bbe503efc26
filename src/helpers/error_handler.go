package helpers

import (
	"errors"
	"fmt"
	"sync/atomic"

	"market-assistant/src/logger"
)

// -----------------------------------------------------------------------------
// Error kinds
// -----------------------------------------------------------------------------

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNetwork           ErrorKind = "network"
	KindAuthorization     ErrorKind = "authorization"
	KindRateLimit         ErrorKind = "rate_limit"
	KindBadRequest        ErrorKind = "bad_request"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindNoData            ErrorKind = "no_data"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindInternal          ErrorKind = "internal"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewError builds an AppError of the given kind.
func NewError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// -----------------------------------------------------------------------------
// User-facing messages
// -----------------------------------------------------------------------------

const (
	MsgAuthorization = "API access denied. Your API key may be invalid or has reached its quota limit. Try updating your API key with '/apikey YOUR_NEW_KEY'"
	MsgRateLimit     = "Too many requests to the API. Please wait a moment before trying again."
	MsgBadRequest    = "API endpoint not found or bad request. The Gemini API services may have changed. Check if you're using the correct endpoints."
	MsgNetwork       = "Network connection error. Please check your internet connection."
	MsgNoData        = "No data available for this symbol"
)

// UserMessage maps any error to the sentence shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fmt.Sprintf("Error: %v. Please try again or update your API key with '/apikey YOUR_NEW_KEY'", err)
	}

	switch appErr.Kind {
	case KindAuthorization:
		return MsgAuthorization
	case KindRateLimit:
		return MsgRateLimit
	case KindBadRequest:
		return MsgBadRequest
	case KindNetwork:
		return MsgNetwork
	case KindNoData, KindValidation:
		return appErr.Message
	default:
		return fmt.Sprintf("Error: %s. Please try again or update your API key with '/apikey YOUR_NEW_KEY'", appErr.Message)
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(l *logger.Logger) *ErrorHandler {
	if l == nil {
		l = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: l}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

func (e *ErrorHandler) ErrorCount() int64 {
	return e.errorCount.Load()
}

// -----------------------------------------------------------------------------

// Handle logs err under context. Degradable kinds are logged as warnings.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	e.errorCount.Add(1)
	switch KindOf(err) {
	case KindNoData, KindValidation, KindPermissionDenied:
		e.Logger.Warning("%s: %v", context, err)
	default:
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
