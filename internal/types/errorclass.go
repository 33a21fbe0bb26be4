package types

// ErrorClass categorizes provider failures before they are surfaced as
// a Response error. Every adapter failure maps to exactly one class.
type ErrorClass string

const (
	ErrClassAuth    ErrorClass = "auth"    // credential missing or rejected
	ErrClassNetwork ErrorClass = "network" // request dispatched, no response
	ErrClassTimeout ErrorClass = "timeout" // provider exceeded its window
	ErrClassAPI     ErrorClass = "api"     // non-success status from provider
	ErrClassParse   ErrorClass = "parse"   // payload not reducible to suggestions
	ErrClassUnknown ErrorClass = "unknown"
)

func ParseErrorClass(s string) (ErrorClass, bool) {
	switch ErrorClass(s) {
	case ErrClassAuth, ErrClassNetwork, ErrClassTimeout, ErrClassAPI, ErrClassParse, ErrClassUnknown:
		return ErrorClass(s), true
	default:
		return "", false
	}
}

// Retryable reports whether a failure of this class should trigger the
// fallback provider. All runtime failures are retryable; only caller
// misuse is not, and that never reaches classification.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrClassAuth, ErrClassNetwork, ErrClassTimeout, ErrClassAPI, ErrClassParse:
		return true
	default:
		return false
	}
}
