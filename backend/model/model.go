package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client-to-server event types.
const (
	TypeJoinRoom       = "join-room"
	TypeCallOffer      = "call-offer"
	TypeCallAnswer     = "call-answer"
	TypeICECandidate   = "ice-candidate" // also sent server-to-client
	TypeDisconnectRoom = "disconnect-room"
)

// Server-to-client event types.
const (
	TypeJoinedRoom       = "joined-room"
	TypeRoomFull         = "room-full"
	TypeUserJoined       = "user-joined"
	TypeIncomingCall     = "incoming-call"
	TypeCallAccepted     = "call-accepted"
	TypeUserDisconnected = "user-disconnected"
)

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrMissingField = errors.New("missing message field")
)

// Message is the wire envelope for every signaling event, in both directions.
// Field names follow the client protocol; offer/answer/candidate payloads are
// forwarded opaquely and never parsed by the server.
type Message struct {
	Type         string          `json:"type"`
	RoomID       string          `json:"roomId,omitempty"`
	EmailID      string          `json:"emailId,omitempty"` // join identifier or forward target
	To           string          `json:"to,omitempty"`      // ice-candidate forward target
	From         string          `json:"from,omitempty"`
	PartnerEmail string          `json:"partnerEmail,omitempty"`
	Reason       string          `json:"message,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"ans,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// Validate checks that an inbound message carries the fields its type
// requires. Outbound messages are built by the relay and are not validated.
func (m Message) Validate() error {
	switch m.Type {
	case TypeJoinRoom:
		if m.RoomID == "" || m.EmailID == "" {
			return fmt.Errorf("%w: join-room needs roomId and emailId", ErrMissingField)
		}
	case TypeCallOffer:
		if m.EmailID == "" || len(m.Offer) == 0 {
			return fmt.Errorf("%w: call-offer needs emailId and offer", ErrMissingField)
		}
	case TypeCallAnswer:
		if m.EmailID == "" || len(m.Answer) == 0 {
			return fmt.Errorf("%w: call-answer needs emailId and ans", ErrMissingField)
		}
	case TypeICECandidate:
		if m.To == "" || len(m.Candidate) == 0 {
			return fmt.Errorf("%w: ice-candidate needs to and candidate", ErrMissingField)
		}
	case TypeDisconnectRoom:
		if m.RoomID == "" {
			return fmt.Errorf("%w: disconnect-room needs roomId", ErrMissingField)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return nil
}

// Wire is the channel pair connecting one websocket session to the relay.
// RX carries inbound client messages, TX carries messages to be written out.
type Wire struct {
	RX chan Message
	TX chan Message
}

func NewWire() Wire {
	return Wire{
		RX: make(chan Message),
		TX: make(chan Message),
	}
}
