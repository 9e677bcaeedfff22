package entity

import "errors"

// Signaling errors surfaced to the offending client. None of them is fatal to
// the service; each is scoped to a single connection or call pair.
var (
	ErrTargetUnreachable = errors.New("target unreachable")
	ErrNoSuchCall        = errors.New("no such call")
	ErrCallInProgress    = errors.New("call already in progress")
	ErrStaleEpoch        = errors.New("stale negotiation epoch")
	ErrBadEnvelope       = errors.New("malformed envelope")
)

// Error kinds as they appear on the wire.
const (
	KindTargetUnreachable = "TargetUnreachable"
	KindNoSuchCall        = "NoSuchCall"
	KindCallInProgress    = "CallAlreadyInProgress"
	KindProtocolError     = "ProtocolError"
)

// ErrorKind maps a signaling error to its wire kind. Unknown errors degrade
// to ProtocolError rather than leaking internals.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrTargetUnreachable):
		return KindTargetUnreachable
	case errors.Is(err, ErrNoSuchCall):
		return KindNoSuchCall
	case errors.Is(err, ErrCallInProgress):
		return KindCallInProgress
	default:
		return KindProtocolError
	}
}
