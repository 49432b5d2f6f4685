package _switch

import (
	"context"
	"testing"
	"time"

	"github.com/parambehera/Viora/backend/model"
	"github.com/rs/zerolog"
)

func newTestSwitch() *Switch {
	logger := zerolog.Nop()
	sw := NewSwitch(&logger)
	sw.fwdTimeout = 50 * time.Millisecond
	return sw
}

func TestSwitch_SendToAttachedWire(t *testing.T) {
	sw := newTestSwitch()
	wire := model.NewWire()
	sw.Attach("h1", wire)

	got := make(chan model.Message, 1)
	go func() {
		got <- <-wire.TX
	}()

	if !sw.Send(context.Background(), "h1", model.Message{Type: model.TypeJoinedRoom, RoomID: "r1"}) {
		t.Fatalf("Send reported failure")
	}
	select {
	case msg := <-got:
		if msg.Type != model.TypeJoinedRoom || msg.RoomID != "r1" {
			t.Fatalf("received: %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("message never arrived")
	}
}

func TestSwitch_SendToUnknownHandle(t *testing.T) {
	sw := newTestSwitch()
	if sw.Send(context.Background(), "nope", model.Message{Type: model.TypeJoinedRoom}) {
		t.Fatalf("Send to unattached handle reported success")
	}
}

func TestSwitch_DetachStopsDelivery(t *testing.T) {
	sw := newTestSwitch()
	wire := model.NewWire()
	sw.Attach("h1", wire)
	sw.Detach("h1")

	if sw.Send(context.Background(), "h1", model.Message{Type: model.TypeJoinedRoom}) {
		t.Fatalf("Send after Detach reported success")
	}
}

func TestSwitch_DeadEndpointTimesOut(t *testing.T) {
	sw := newTestSwitch()
	sw.Attach("h1", model.NewWire()) // nobody drains TX

	start := time.Now()
	if sw.Send(context.Background(), "h1", model.Message{Type: model.TypeJoinedRoom}) {
		t.Fatalf("Send to dead endpoint reported success")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("send did not respect forward timeout")
	}
}

func TestSwitch_SendCanceledContext(t *testing.T) {
	sw := newTestSwitch()
	sw.Attach("h1", model.NewWire())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sw.Send(ctx, "h1", model.Message{Type: model.TypeJoinedRoom}) {
		t.Fatalf("Send with canceled context reported success")
	}
}
