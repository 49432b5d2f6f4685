package _switch

import (
	"context"
	"sync"
	"time"

	"github.com/parambehera/Viora/backend/model"
	"github.com/rs/zerolog"
)

const defaultFwdTimeout = time.Second

// Switch owns the handle -> wire table and is the only place outbound
// messages cross from relay logic into a live connection. Delivery is
// fire-and-forget: a handle that is gone or not draining its TX channel
// within the timeout loses the message.
type Switch struct {
	logger     zerolog.Logger
	mx         *sync.RWMutex
	wires      map[string]model.Wire
	fwdTimeout time.Duration
}

func NewSwitch(logger *zerolog.Logger) *Switch {
	return &Switch{
		logger:     logger.With().Str("component", "switch").Logger(),
		mx:         &sync.RWMutex{},
		wires:      make(map[string]model.Wire),
		fwdTimeout: defaultFwdTimeout,
	}
}

func (sw *Switch) Attach(handle string, wire model.Wire) {
	sw.mx.Lock()
	sw.wires[handle] = wire
	sw.mx.Unlock()
	sw.logger.Debug().Str("handle", handle).Msg("endpoint attached")
}

func (sw *Switch) Detach(handle string) {
	sw.mx.Lock()
	delete(sw.wires, handle)
	sw.mx.Unlock()
	sw.logger.Debug().Str("handle", handle).Msg("endpoint detached")
}

// Send forwards msg to the wire attached for handle. It reports whether the
// message was handed to the connection's sender.
func (sw *Switch) Send(ctx context.Context, handle string, msg model.Message) bool {
	logger := sw.logger.With().
		Str("handle", handle).
		Str("type", msg.Type).
		Logger()

	sw.mx.RLock()
	wire, ok := sw.wires[handle]
	sw.mx.RUnlock()
	if !ok {
		logger.Debug().Msg("cannot send, handle not attached")
		return false
	}

	var sent bool
	tCh := time.NewTimer(sw.fwdTimeout)
	select {
	case <-ctx.Done():
	case <-tCh.C:
		logger.Error().Msg("dead endpoint")
	case wire.TX <- msg:
		logger.Debug().Msg("message forwarded")
		sent = true
	}
	tCh.Stop()
	return sent
}
