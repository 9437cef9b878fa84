package reportflow

import (
	"errors"
	"fmt"
)

// ErrorType is the closed set of submission failures shown to the user
type ErrorType string

const (
	ErrorValidation         ErrorType = "validation"
	ErrorDuplicateMicrochip ErrorType = "duplicate-microchip"
	ErrorNetwork            ErrorType = "network"
	ErrorServer             ErrorType = "server"
)

// Phase tells which half of a submission failed
type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseUpload Phase = "upload"
)

// User-facing messages for the non-validation error types
const (
	MessageDuplicateMicrochip = "An announcement with this microchip number already exists. Use your management password to update it instead."
	MessageNetwork            = "Could not reach the server. Check your internet connection and try again."
	MessageServer             = "Something went wrong on our side. Please try again later."
)

var (
	// ErrSubmissionInProgress is returned when a submission is already running for the flow
	ErrSubmissionInProgress = errors.New("submission already in progress")
	// ErrUnsupportedIntent is returned for intents the current step does not handle
	ErrUnsupportedIntent = errors.New("intent not supported by the current step")
)

// SubmissionError is the typed failure of a create or upload call
type SubmissionError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Phase      Phase
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s, status %d): %s", e.Type, e.Phase, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Type, e.Phase, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ValidationError is a request rejected by the server
func ValidationError(message string, statusCode int) *SubmissionError {
	return &SubmissionError{Type: ErrorValidation, Message: message, StatusCode: statusCode}
}

// DuplicateMicrochipError is a uniqueness conflict on the microchip number
func DuplicateMicrochipError() *SubmissionError {
	return &SubmissionError{Type: ErrorDuplicateMicrochip, Message: MessageDuplicateMicrochip, StatusCode: 409}
}

// NetworkError is a transport failure with no response
func NetworkError(err error) *SubmissionError {
	return &SubmissionError{Type: ErrorNetwork, Message: MessageNetwork, Err: err}
}

// ServerError is a 5xx response
func ServerError(statusCode int) *SubmissionError {
	return &SubmissionError{Type: ErrorServer, Message: MessageServer, StatusCode: statusCode}
}

// AsSubmissionError classifies err for the given phase. Errors that are not
// already a SubmissionError are treated as transport failures.
func AsSubmissionError(err error, phase Phase) *SubmissionError {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		cp := *subErr
		cp.Phase = phase
		return &cp
	}
	e := NetworkError(err)
	e.Phase = phase
	return e
}
