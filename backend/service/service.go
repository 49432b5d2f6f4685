package service

import (
	"context"

	"github.com/parambehera/Viora/backend/model"
	"github.com/parambehera/Viora/backend/relay"
	"github.com/rs/zerolog"
)

type (
	Relay interface {
		Handle(sess *relay.Session, msg model.Message) []relay.Delivery
		HandleClose(sess *relay.Session) []relay.Delivery
	}

	Switch interface {
		Attach(handle string, wire model.Wire)
		Detach(handle string)
		Send(ctx context.Context, handle string, msg model.Message) bool
	}

	// Service drives one signaling session per live connection: it attaches
	// the wire to the switch and pumps inbound messages through the relay,
	// dispatching the resulting deliveries. Cleanup runs exactly once, when
	// the session context is canceled or the RX channel closes.
	Service struct {
		relay  Relay
		sw     Switch
		logger zerolog.Logger
	}

	Config struct {
		Relay  Relay
		Switch Switch
		Logger *zerolog.Logger
	}
)

func NewService(cfg Config) *Service {
	return &Service{
		relay:  cfg.Relay,
		sw:     cfg.Switch,
		logger: cfg.Logger.With().Str("component", "service").Logger(),
	}
}

// CreateSignalingSession registers the connection's wire and starts its
// message pump. The pump owns all relay interaction for this handle, so
// per-session state needs no locking.
func (svc *Service) CreateSignalingSession(ctx context.Context, handle string, wire model.Wire) {
	svc.sw.Attach(handle, wire)
	svc.logger.Debug().Str("handle", handle).Msg("signaling session created")
	go svc.pump(ctx, &relay.Session{Handle: handle}, wire)
}

func (svc *Service) pump(ctx context.Context, sess *relay.Session, wire model.Wire) {
PumpLoop:
	for {
		select {
		case <-ctx.Done():
			break PumpLoop
		case msg, ok := <-wire.RX:
			if !ok {
				break PumpLoop
			}
			svc.dispatch(ctx, svc.relay.Handle(sess, msg))
		}
	}

	// Transport is gone (or going); deliveries here target other sessions.
	svc.dispatch(context.Background(), svc.relay.HandleClose(sess))
	svc.sw.Detach(sess.Handle)
	svc.logger.Debug().Str("handle", sess.Handle).Msg("signaling session ended")
}

func (svc *Service) dispatch(ctx context.Context, deliveries []relay.Delivery) {
	for _, d := range deliveries {
		if !svc.sw.Send(ctx, d.To, d.Msg) {
			svc.logger.Debug().
				Str("handle", d.To).
				Str("type", d.Msg.Type).
				Msg("delivery dropped")
		}
	}
}
