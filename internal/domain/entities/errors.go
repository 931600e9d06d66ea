package entities

import (
	"errors"
	"fmt"
)

// HostErrorKind categorizes failures surfaced to the host as user-facing messages
type HostErrorKind string

const (
	HostErrorWrongDomain   HostErrorKind = "wrong_domain"
	HostErrorNoContent     HostErrorKind = "no_content"
	HostErrorUnableToParse HostErrorKind = "unable_to_parse"
)

var hostMessages = map[HostErrorKind]string{
	HostErrorWrongDomain:   "Presentation mode only works on Notion pages.",
	HostErrorNoContent:     "No content found on this page.",
	HostErrorUnableToParse: "Unable to parse content.",
}

// HostError is a precondition failure the host shows to the user
type HostError struct {
	Kind    HostErrorKind `json:"error"`
	Message string        `json:"message"`
	Cause   error         `json:"-"`
}

// NewHostError creates a host error with the standard message for kind
func NewHostError(kind HostErrorKind, cause error) *HostError {
	return &HostError{Kind: kind, Message: hostMessages[kind], Cause: cause}
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Cause
}

// IsHostError reports whether err is a HostError of the given kind
func IsHostError(err error, kind HostErrorKind) bool {
	var hostErr *HostError
	return errors.As(err, &hostErr) && hostErr.Kind == kind
}

// ErrUnableToParse marks a traversal failure at the extraction boundary
var ErrUnableToParse = errors.New("unable to parse content")
