package services

import (
	"context"

	"github.com/koclukapp/kocluk-backend/internal/logger"
	"github.com/koclukapp/kocluk-backend/internal/sse"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg sse.SSEMessage)
}

type sseEmitter struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus SSEBus
}

// NewSSEEmitter routes events through the redis bus when one is configured
// (the bus forwarder broadcasts them back into every instance's hub) and
// falls back to broadcasting on the local hub directly.
func NewSSEEmitter(log *logger.Logger, hub *sse.SSEHub, bus SSEBus) SSEEmitter {
	return &sseEmitter{
		log: log.With("service", "SSEEmitter"),
		hub: hub,
		bus: bus,
	}
}

func (e *sseEmitter) Emit(ctx context.Context, msg sse.SSEMessage) {
	if e == nil || msg.Channel == "" {
		return
	}
	if e.bus != nil {
		if err := e.bus.Publish(ctx, msg); err == nil {
			return
		} else {
			e.log.Warn("SSE bus publish failed, broadcasting locally", "error", err)
		}
	}
	if e.hub != nil {
		e.hub.Broadcast(msg)
	}
}
