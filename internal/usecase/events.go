package usecase

// Call lifecycle events published to the event feed.
const (
	EventCallInitiated = "call.initiated"
	EventCallConnected = "call.connected"
	EventCallRejected  = "call.rejected"
	EventCallEnded     = "call.ended"
)

// End reasons carried on call.ended events.
const (
	ReasonHangup     = "hangup"
	ReasonDisconnect = "disconnect"
	ReasonTimeout    = "offer_timeout"
	ReasonShutdown   = "shutdown"
)

// CallEvent is the body of every call lifecycle event.
type CallEvent struct {
	CallID    string `json:"call_id"`
	Initiator string `json:"initiator"`
	Callee    string `json:"callee"`
	Reason    string `json:"reason,omitempty"`
}
