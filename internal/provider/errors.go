package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/quillworks/quill-gateway/internal/types"
)

var errNoChoices = errors.New("response contained no completion content")

// Error is a classified provider failure. It names the provider so the
// surfaced message tells the caller which backend misbehaved.
type Error struct {
	Provider string
	Class    types.ErrorClass
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Class, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Class, e.Message)
}

// ClassOf extracts the taxonomy class from an error chain. Anything
// that is not a classified provider error is unknown.
func ClassOf(err error) types.ErrorClass {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Class
	}
	return types.ErrClassUnknown
}

// classifyTransport maps an HTTP client error to the taxonomy: the
// request was dispatched but no usable response came back.
func classifyTransport(provider string, err error) *Error {
	class := types.ErrClassNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		class = types.ErrClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		class = types.ErrClassTimeout
	}
	return &Error{Provider: provider, Class: class, Message: err.Error()}
}

// classifyStatus maps a non-success HTTP status to the taxonomy.
func classifyStatus(provider string, status int, body string) *Error {
	class := types.ErrClassAPI
	if status == 401 || status == 403 {
		class = types.ErrClassAuth
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return &Error{Provider: provider, Class: class, Status: status, Message: body}
}

// missingCredential reports an auth failure without a network round trip.
func missingCredential(provider string) *Error {
	return &Error{Provider: provider, Class: types.ErrClassAuth, Message: "no API key configured"}
}

// parseFailure wraps an unparsable model payload.
func parseFailure(provider string, err error) *Error {
	return &Error{Provider: provider, Class: types.ErrClassParse, Message: err.Error()}
}
