package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/repositories"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrEmptyContent       = errors.New("no text could be extracted from the file")
	ErrExtraction         = errors.New("failed to extract text")
	ErrServiceUnavailable = errors.New("inference service unavailable")
	ErrMalformedEnvelope  = errors.New("malformed inference response envelope")
	ErrInvalidModelJSON   = errors.New("invalid JSON in model response")
	ErrMissingField       = errors.New("missing field in structured data")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateMatch     = repositories.ErrDuplicateMatch
)

// ServiceError carries the status and body of a failed inference call.
// StatusCode is zero when the request never got a response.
type ServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %v", ErrServiceUnavailable, e.Err)
	}
	return fmt.Sprintf("%v: status %d: %s", ErrServiceUnavailable, e.StatusCode, e.Body)
}

func (e *ServiceError) Is(target error) bool { return target == ErrServiceUnavailable }

func (e *ServiceError) Unwrap() error { return e.Err }

// ModelJSONError keeps the raw model output that could not be used.
type ModelJSONError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ModelJSONError) Error() string {
	msg := ErrInvalidModelJSON.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelJSONError) Is(target error) bool { return target == ErrInvalidModelJSON }

func (e *ModelJSONError) Unwrap() error { return e.Err }

type EntityKind string

const (
	KindJob       EntityKind = "job"
	KindCandidate EntityKind = "candidate"
)

type NotFoundError struct {
	Kind EntityKind
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

func extractionError(fileType string, cause error) error {
	return fmt.Errorf("%w (%s): %w", ErrExtraction, fileType, cause)
}
