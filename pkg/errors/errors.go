package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeIneligible       Code = "INELIGIBLE"
	CodeStateConflict    Code = "STATE_CONFLICT"
	CodeApprovalDeclined Code = "APPROVAL_DECLINED"
	CodeTransport        Code = "TRANSPORT_ERROR"
	CodeDependency       Code = "DEPENDENCY_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Metadata classifies how a flow controller reacts to a code: whether the
// underlying call may be retried in place, and whether the controller
// recovers by falling back to web checkout instead of surfacing the error.
type Metadata struct {
	Retryable      bool
	Fallback       bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		Fallback:       false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeIneligible: {
		Retryable:     false,
		Fallback:      false,
		PublicMessage: "flow not eligible",
	},
	CodeStateConflict: {
		Retryable:      false,
		Fallback:       false,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
	},
	CodeApprovalDeclined: {
		Retryable:     false,
		Fallback:      true,
		PublicMessage: "approval declined",
	},
	CodeTransport: {
		Retryable:     false,
		Fallback:      true,
		PublicMessage: "transport unavailable",
	},
	CodeDependency: {
		Retryable:      true,
		Fallback:       true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
	CodeInternal: {
		Retryable:     false,
		Fallback:      false,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Retryable reports whether the error carries a code whose operation may be
// retried in place.
func Retryable(err error) bool {
	return MetadataFor(As(err).Code()).Retryable
}

// RecoversByFallback reports whether a flow controller should absorb the
// error and transition to the web checkout fallback.
func RecoversByFallback(err error) bool {
	return MetadataFor(As(err).Code()).Fallback
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
