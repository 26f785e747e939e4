package recommender

import (
	"errors"
	"fmt"
)

// Error codes shared by the recommendation core and the ingestion pipeline
const (
	CodeNotFound                = "NOT_FOUND"
	CodeEmptyInput              = "EMPTY_INPUT"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeConsistencyViolation    = "CONSISTENCY_VIOLATION"
	CodeArtifactMissing         = "ARTIFACT_MISSING"
	CodeArtifactVersionMismatch = "ARTIFACT_VERSION_MISMATCH"
)

// Error is the domain error type for the recommendation subsystem.
// Every failure surfaced to callers carries a machine-readable code so
// handlers can map it to a response without string matching.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error with the given code
func NewError(code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError reports an unknown user or movie id
func NotFoundError(format string, args ...any) *Error {
	return NewError(CodeNotFound, format, args...)
}

// EmptyInputError reports missing liked/rated items where they are required
func EmptyInputError(format string, args ...any) *Error {
	return NewError(CodeEmptyInput, format, args...)
}

// InvalidInputError reports a malformed request parameter
func InvalidInputError(format string, args ...any) *Error {
	return NewError(CodeInvalidInput, format, args...)
}

// ConsistencyError reports an ingestion size mismatch or profile shrinkage
func ConsistencyError(format string, args ...any) *Error {
	return NewError(CodeConsistencyViolation, format, args...)
}

// ArtifactMissingError reports an absent trained model, index or scaler
func ArtifactMissingError(format string, args ...any) *Error {
	return NewError(CodeArtifactMissing, format, args...)
}

// VersionMismatchError reports an embedding/index pair trained at different times
func VersionMismatchError(format string, args ...any) *Error {
	return NewError(CodeArtifactVersionMismatch, format, args...)
}

func isCode(err error, code string) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound checks whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return isCode(err, CodeNotFound)
}

// IsEmptyInput checks whether err is an EMPTY_INPUT domain error
func IsEmptyInput(err error) bool {
	return isCode(err, CodeEmptyInput)
}

// IsInvalidInput checks whether err is an INVALID_INPUT domain error
func IsInvalidInput(err error) bool {
	return isCode(err, CodeInvalidInput)
}

// IsConsistencyViolation checks whether err is a CONSISTENCY_VIOLATION domain error
func IsConsistencyViolation(err error) bool {
	return isCode(err, CodeConsistencyViolation)
}

// IsArtifactMissing checks whether err is an ARTIFACT_MISSING domain error
func IsArtifactMissing(err error) bool {
	return isCode(err, CodeArtifactMissing)
}

// IsVersionMismatch checks whether err is an ARTIFACT_VERSION_MISMATCH domain error
func IsVersionMismatch(err error) bool {
	return isCode(err, CodeArtifactVersionMismatch)
}
