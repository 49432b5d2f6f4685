package relay

import (
	"errors"

	"github.com/parambehera/Viora/backend/model"
	"github.com/rs/zerolog"
)

const roomFullReason = "Room is full. Try another room."

var ErrRegister = errors.New("unable to register identifier")

type (
	// Registry is the identifier<->handle mapping consulted for routing.
	Registry interface {
		Register(id, handle string) error
		Handle(id string) (string, bool)
		Identifier(handle string) (string, bool)
		Remove(id string)
		RemoveByHandle(handle string)
	}

	// RoomStore tracks room occupancy keyed by connection handle.
	RoomStore interface {
		Join(roomID, handle string) error
		Leave(roomID, handle string) bool
		MembersExcept(roomID, handle string) []string
		CloseRoom(roomID string) []string
	}

	// Session is the per-connection state owned by one websocket session.
	// It is mutated only by that session's message pump, never concurrently.
	Session struct {
		Handle  string
		EmailID string
		RoomID  string
	}

	// Delivery is one outbound message addressed to a specific handle.
	Delivery struct {
		To  string
		Msg model.Message
	}

	Relay struct {
		logger zerolog.Logger
		ids    Registry
		rooms  RoomStore
	}

	Config struct {
		Logger   *zerolog.Logger
		Registry Registry
		Rooms    RoomStore
	}
)

func New(cfg Config) *Relay {
	return &Relay{
		logger: cfg.Logger.With().Str("component", "relay").Logger(),
		ids:    cfg.Registry,
		rooms:  cfg.Rooms,
	}
}

// Handle processes one inbound message from a session and returns the
// messages to deliver, each addressed to a specific handle. It never blocks
// and never returns an error: capacity violations are answered with
// room-full, routing misses are dropped.
func (rl *Relay) Handle(sess *Session, msg model.Message) []Delivery {
	switch msg.Type {
	case model.TypeJoinRoom:
		return rl.join(sess, msg)
	case model.TypeCallOffer:
		return rl.forward(sess, msg.EmailID, model.Message{
			Type:  model.TypeIncomingCall,
			From:  sess.EmailID,
			Offer: msg.Offer,
		})
	case model.TypeCallAnswer:
		return rl.forward(sess, msg.EmailID, model.Message{
			Type:   model.TypeCallAccepted,
			Answer: msg.Answer,
		})
	case model.TypeICECandidate:
		return rl.forward(sess, msg.To, model.Message{
			Type:      model.TypeICECandidate,
			From:      sess.EmailID,
			Candidate: msg.Candidate,
		})
	case model.TypeDisconnectRoom:
		return rl.disconnect(sess, msg)
	}
	rl.logger.Warn().
		Str("type", msg.Type).
		Str("handle", sess.Handle).
		Msg("unhandled message type")
	return nil
}

func (rl *Relay) join(sess *Session, msg model.Message) []Delivery {
	logger := rl.logger.With().
		Str("roomID", msg.RoomID).
		Str("emailID", msg.EmailID).
		Str("handle", sess.Handle).
		Logger()

	if err := rl.rooms.Join(msg.RoomID, sess.Handle); err != nil {
		logger.Debug().Err(err).Msg("join rejected")
		return []Delivery{{To: sess.Handle, Msg: model.Message{
			Type:   model.TypeRoomFull,
			Reason: roomFullReason,
		}}}
	}

	// A session re-joining switches rooms; it never occupies two slots.
	if sess.RoomID != "" && sess.RoomID != msg.RoomID {
		rl.rooms.Leave(sess.RoomID, sess.Handle)
	}

	if err := rl.register(sess.Handle, msg.EmailID); err != nil {
		// Cannot happen after stale-entry eviction, but a registration
		// failure must not leave the handle occupying a slot.
		logger.Error().Err(err).Msg("registration failed")
		rl.rooms.Leave(msg.RoomID, sess.Handle)
		return nil
	}
	sess.EmailID = msg.EmailID
	sess.RoomID = msg.RoomID
	logger.Debug().Msg("user joined room")

	out := []Delivery{{To: sess.Handle, Msg: model.Message{
		Type:   model.TypeJoinedRoom,
		RoomID: msg.RoomID,
	}}}
	for _, other := range rl.rooms.MembersExcept(msg.RoomID, sess.Handle) {
		out = append(out, Delivery{To: other, Msg: model.Message{
			Type:    model.TypeUserJoined,
			EmailID: msg.EmailID,
		}})
	}
	return out
}

// register evicts stale entries for both the identifier and the handle before
// inserting the fresh pair, per the rejoin contract.
func (rl *Relay) register(handle, emailID string) error {
	rl.ids.Remove(emailID)
	rl.ids.RemoveByHandle(handle)
	if err := rl.ids.Register(emailID, handle); err != nil {
		return errors.Join(ErrRegister, err)
	}
	return nil
}

// forward resolves target to its live handle and addresses out to it. A miss
// means the target already left; the message is dropped, not an error.
func (rl *Relay) forward(sess *Session, target string, out model.Message) []Delivery {
	handle, ok := rl.ids.Handle(target)
	if !ok {
		rl.logger.Debug().
			Str("type", out.Type).
			Str("target", target).
			Str("from", sess.EmailID).
			Msg("cannot forward, target not found")
		return nil
	}
	return []Delivery{{To: handle, Msg: out}}
}

// disconnect is the authoritative teardown: notify the named peer, empty the
// whole room so its ID becomes reusable immediately, and drop the registry
// entries of both participants.
func (rl *Relay) disconnect(sess *Session, msg model.Message) []Delivery {
	var out []Delivery
	if peerHandle, ok := rl.ids.Handle(msg.EmailID); ok {
		out = append(out, Delivery{To: peerHandle, Msg: model.Message{
			Type:         model.TypeUserDisconnected,
			PartnerEmail: sess.EmailID,
		}})
	}

	evicted := rl.rooms.CloseRoom(msg.RoomID)
	rl.ids.Remove(msg.EmailID)

	rl.logger.Debug().
		Str("roomID", msg.RoomID).
		Str("initiator", sess.EmailID).
		Str("peer", msg.EmailID).
		Int("evicted", len(evicted)).
		Msg("room torn down")

	// The initiator's own registration and state go away only when the
	// named room is the one it occupies. A teardown naming some other room
	// leaves the session live in its own room, so its slot there is still
	// vacated on transport close. The named peer's session keeps pointing
	// at the closed room until its own teardown; its close path sees the
	// stale membership and notifies no one.
	if sess.RoomID == msg.RoomID {
		rl.ids.RemoveByHandle(sess.Handle)
		sess.EmailID = ""
		sess.RoomID = ""
	}
	return out
}

// HandleClose performs cleanup after the session's transport closed without a
// prior disconnect-room: the registry entry goes away and the handle's room
// slot is vacated, with the remaining occupant told its partner is gone.
func (rl *Relay) HandleClose(sess *Session) []Delivery {
	rl.ids.RemoveByHandle(sess.Handle)
	if sess.RoomID == "" {
		return nil
	}

	// The session's room may have been torn down (and even re-occupied by a
	// fresh pair) since it joined; occupants it never shared the room with
	// must not hear about this closure.
	var out []Delivery
	if rl.rooms.Leave(sess.RoomID, sess.Handle) {
		for _, other := range rl.rooms.MembersExcept(sess.RoomID, sess.Handle) {
			out = append(out, Delivery{To: other, Msg: model.Message{
				Type:         model.TypeUserDisconnected,
				PartnerEmail: sess.EmailID,
			}})
		}
	}
	rl.logger.Debug().
		Str("roomID", sess.RoomID).
		Str("handle", sess.Handle).
		Str("emailID", sess.EmailID).
		Msg("session cleaned up after connection loss")

	sess.EmailID = ""
	sess.RoomID = ""
	return out
}
