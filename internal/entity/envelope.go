// Package entity defines main entities for business logic (services) and the
// wire objects exchanged with clients. Each logic group entities in own file.
package entity

import "encoding/json"

// Envelope is the wire unit. Payload stays opaque to routing; only call
// handling reasons about Type and Epoch.
type Envelope struct {
	Type    string          `json:"type"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Epoch   uint64          `json:"epoch,omitempty"`
}

// Envelope types received from clients.
const (
	TypeRegister     = "identity:register"
	TypeRoomJoin     = "room:join"
	TypeCallInitiate = "call:initiate"
	TypeCallAccept   = "call:accept"
	TypeCallReject   = "call:reject"
	TypeCallEnd      = "call:end"
	TypeNegoNeeded   = "negotiation:needed"
	TypeNegoDone     = "negotiation:done"
	TypeICECandidate = "ice:candidate"
	TypeChatSend     = "chat:send"
)

// Envelope types emitted to clients.
const (
	TypeReplaced     = "identity:replaced"
	TypeRoomJoined   = "room:joined"
	TypeMemberJoined = "room:memberJoined"
	TypeCallIncoming = "call:incoming"
	TypeCallAccepted = "call:accepted"
	TypeCallRejected = "call:rejected"
	TypeCallEnded    = "call:ended"
	TypeNegoFinal    = "negotiation:final"
	TypeChatMessage  = "chat:message"
	TypeError        = "error"
)

// RegisterPayload -.
type RegisterPayload struct {
	Identity string `json:"identity"`
}

// RoomJoinPayload -.
type RoomJoinPayload struct {
	Room     string `json:"room"`
	Identity string `json:"identity,omitempty"`
}

// RoomJoinedPayload answers a join with the pre-existing members in join order.
type RoomJoinedPayload struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

// MemberJoinedPayload -.
type MemberJoinedPayload struct {
	Identity      string `json:"identity"`
	ConnectionRef string `json:"connectionRef"`
}

// OfferPayload carries an opaque session description produced by the caller's
// media engine. It is relayed verbatim, never parsed.
type OfferPayload struct {
	Offer json.RawMessage `json:"offer"`
}

// AnswerPayload -.
type AnswerPayload struct {
	Answer json.RawMessage `json:"answer"`
}

// CandidatePayload -.
type CandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
}

// ChatSendPayload -.
type ChatSendPayload struct {
	Message string `json:"message"`
}

// ChatMessagePayload -.
type ChatMessagePayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsSelf    bool   `json:"isSelf,omitempty"`
}

// ErrorPayload -.
type ErrorPayload struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}
