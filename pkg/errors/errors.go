package errors

import "fmt"

// ErrorType classifies failures across the scraping pipeline
type ErrorType string

const (
	ErrorTypeNotInitialized   ErrorType = "not_initialized"
	ErrorTypeEmptyResponse    ErrorType = "empty_response"
	ErrorTypeUpstreamRejected ErrorType = "upstream_rejected"
	ErrorTypeMissingToken     ErrorType = "missing_token"
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeClassifier       ErrorType = "classifier"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error represents a pipeline error with type information. Code carries the
// upstream status_code when the payload included one.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Is matches any *Error of the same type, so sentinel comparisons via
// errors.Is work across separately constructed instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// Sentinel errors for the common failure modes.
var (
	ErrNotInitialized   = &Error{Type: ErrorTypeNotInitialized, Message: "client not initialized"}
	ErrEmptyResponse    = &Error{Type: ErrorTypeEmptyResponse, Message: "upstream returned an empty response"}
	ErrUpstreamRejected = &Error{Type: ErrorTypeUpstreamRejected, Message: "upstream rejected the request"}
	ErrMissingToken     = &Error{Type: ErrorTypeMissingToken, Message: "msToken cookie not found"}
)

// New creates a typed error.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message.
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// WithCode returns a copy of the error carrying an upstream status code.
func (e *Error) WithCode(code int) *Error {
	return &Error{Type: e.Type, Message: e.Message, Code: code}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeEmptyResponse, ErrorTypeUpstreamRejected, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}
