package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/sse"
)

type stubSSEBus struct {
	publishErr error
	published  []sse.SSEMessage
}

func (s *stubSSEBus) Publish(ctx context.Context, msg sse.SSEMessage) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, msg)
	return nil
}

func (s *stubSSEBus) StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error {
	return nil
}

func (s *stubSSEBus) Close() error { return nil }

func recvSSE(t *testing.T, ch <-chan sse.SSEMessage) sse.SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for SSE message")
	}
	return sse.SSEMessage{}
}

func TestSSEEmitterLocalFallback(t *testing.T) {
	log := mustTestLogger(t)
	hub := sse.NewSSEHub(log)
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, sse.UserChannel(userID))
	msg := sse.SSEMessage{Channel: sse.UserChannel(userID), Event: sse.SSEEventTaskCreated}

	// without a bus, events broadcast straight on the local hub
	NewSSEEmitter(log, hub, nil).Emit(context.Background(), msg)
	if got := recvSSE(t, client.Outbound); got.Event != sse.SSEEventTaskCreated {
		t.Fatalf("event: want=%s got=%s", sse.SSEEventTaskCreated, got.Event)
	}

	// a failing bus must not black-hole the event either
	broken := &stubSSEBus{publishErr: fmt.Errorf("redis down")}
	NewSSEEmitter(log, hub, broken).Emit(context.Background(), msg)
	if got := recvSSE(t, client.Outbound); got.Event != sse.SSEEventTaskCreated {
		t.Fatalf("event after bus failure: want=%s got=%s", sse.SSEEventTaskCreated, got.Event)
	}
}

func TestSSEEmitterPrefersBus(t *testing.T) {
	log := mustTestLogger(t)
	hub := sse.NewSSEHub(log)
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, sse.UserChannel(userID))

	bus := &stubSSEBus{}
	emitter := NewSSEEmitter(log, hub, bus)
	emitter.Emit(context.Background(), sse.SSEMessage{Channel: sse.UserChannel(userID), Event: sse.SSEEventRewardCreated})

	if len(bus.published) != 1 || bus.published[0].Event != sse.SSEEventRewardCreated {
		t.Fatalf("bus should carry the event, got %+v", bus.published)
	}
	// the forwarder, not the emitter, feeds the local hub in bus mode
	select {
	case got := <-client.Outbound:
		t.Fatalf("event should not be broadcast locally when the bus accepts it, got=%s", got.Event)
	case <-time.After(100 * time.Millisecond):
	}
}
