package osc

import "fmt"

// DecodeError is the taxonomy of decoder-side failures from spec §7.
// Each variant wraps enough of the offending message to be useful in a
// log line without forcing callers to string-match.
type DecodeError struct {
	Kind    DecodeErrorKind
	Address string
	Index   int // meaningful only for ErrWrongArgumentType
}

// DecodeErrorKind enumerates the decoder error taxonomy from spec §7.
type DecodeErrorKind int

const (
	ErrUnknownAddress DecodeErrorKind = iota
	ErrUnknownMessageType
	ErrEmptyMessage
	ErrMissingSource
	ErrMissingArguments
	ErrWrongArgumentType
	ErrIncompleteBundle
	ErrNotABundle
)

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrUnknownAddress:
		return fmt.Sprintf("osc: unknown address %q", e.Address)
	case ErrUnknownMessageType:
		return fmt.Sprintf("osc: unknown message type in %q", e.Address)
	case ErrEmptyMessage:
		return fmt.Sprintf("osc: empty message at %q", e.Address)
	case ErrMissingSource:
		return fmt.Sprintf("osc: %q source message missing name argument", e.Address)
	case ErrMissingArguments:
		return fmt.Sprintf("osc: %q wrong argument count", e.Address)
	case ErrWrongArgumentType:
		return fmt.Sprintf("osc: %q argument %d has the wrong type", e.Address, e.Index)
	case ErrIncompleteBundle:
		return "osc: bundle carried set data but never identified a profile via a source message"
	case ErrNotABundle:
		return "osc: top-level packet is not a bundle"
	default:
		return "osc: decode error"
	}
}

// Is supports errors.Is comparisons against the DecodeErrorKind sentinels
// below, ignoring Address/Index.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel errors usable with errors.Is, one per DecodeErrorKind, with no
// message-specific detail attached.
var (
	ErrUnknownAddressSentinel     = &DecodeError{Kind: ErrUnknownAddress}
	ErrUnknownMessageTypeSentinel = &DecodeError{Kind: ErrUnknownMessageType}
	ErrEmptyMessageSentinel       = &DecodeError{Kind: ErrEmptyMessage}
	ErrMissingSourceSentinel      = &DecodeError{Kind: ErrMissingSource}
	ErrMissingArgumentsSentinel   = &DecodeError{Kind: ErrMissingArguments}
	ErrWrongArgumentTypeSentinel  = &DecodeError{Kind: ErrWrongArgumentType}
	ErrIncompleteBundleSentinel   = &DecodeError{Kind: ErrIncompleteBundle}
	ErrNotABundleSentinel         = &DecodeError{Kind: ErrNotABundle}
)
