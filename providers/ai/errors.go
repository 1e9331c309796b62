package ai

import "fmt"

// ErrorKind classifies a terminal stream failure so callers can react
// programmatically (e.g. retry credential resolution on MissingAPIKey)
// without parsing error message text.
type ErrorKind string

const (
	ErrorMissingAPIKey    ErrorKind = "missingApiKey"
	ErrorMissingProject   ErrorKind = "missingProject"
	ErrorMissingLocation  ErrorKind = "missingLocation"
	ErrorMissingToken     ErrorKind = "missingToken"
	ErrorInvalidResponse  ErrorKind = "invalidResponse"
	ErrorAPIError         ErrorKind = "apiError"
	ErrorAborted          ErrorKind = "aborted"
	ErrorUnknownAPI       ErrorKind = "unknownApi"
	ErrorUnknown          ErrorKind = "unknown"
)

// StreamError wraps an underlying cause with a classifying ErrorKind.
// errors.Is/errors.As unwrap to the underlying cause; callers that only
// care about the category can type-assert to *StreamError and read Kind.
type StreamError struct {
	Kind  ErrorKind
	Cause error
}

func (e *StreamError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("ai: %s", e.Kind)
	}
	return fmt.Sprintf("ai: %s: %v", e.Kind, e.Cause)
}

func (e *StreamError) Unwrap() error { return e.Cause }

// NewStreamError constructs a *StreamError with the given kind and cause.
func NewStreamError(kind ErrorKind, cause error) *StreamError {
	return &StreamError{Kind: kind, Cause: cause}
}
