package provider

import (
	"errors"
	"fmt"
)

// ErrEmptyData matches every *EmptyDataError through errors.Is.
var ErrEmptyData = errors.New("empty data")

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrUnknownModel    = errors.New("unknown model")
)

// EmptyDataError means a request succeeded but carried no usable rows.
type EmptyDataError struct {
	Msg string
}

func (e *EmptyDataError) Error() string {
	if e.Msg == "" {
		return "the request was returned empty"
	}
	return e.Msg
}

func (e *EmptyDataError) Is(target error) bool { return target == ErrEmptyData }

// Empty builds an EmptyDataError with a formatted message.
func Empty(format string, args ...any) error {
	return &EmptyDataError{Msg: fmt.Sprintf(format, args...)}
}

// MissingCredentialError is returned by the executor when a provider's
// credential is not configured.
type MissingCredentialError struct {
	Provider   string
	Credential string
	Website    string
}

func (e *MissingCredentialError) Error() string {
	msg := fmt.Sprintf("missing credential %q for provider %s", e.Credential, e.Provider)
	if e.Website != "" {
		msg += "; check " + e.Website + " to get it"
	}
	return msg
}

// UnauthorizedError means the vendor rejected the credentials or the plan does
// not cover the endpoint.
type UnauthorizedError struct {
	Provider string
	Msg      string
	Err      error
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized %s request: %s", e.Provider, e.Msg)
}

func (e *UnauthorizedError) Unwrap() error { return e.Err }
