package services

import (
	"context"

	redisclient "github.com/airpen/airpen-backend/internal/clients/redis"
	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/sse"
)

// eventFanout routes pipeline events. With a redis bus configured, events go
// through the bus and come back to every instance's hub via the forwarder,
// this one included; without it, events go straight to the local hub.
type eventFanout struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus redisclient.SSEBus
}

func NewEventFanout(log *logger.Logger, hub *sse.SSEHub, bus redisclient.SSEBus) EventPublisher {
	return &eventFanout{
		log: log.With("service", "EventFanout"),
		hub: hub,
		bus: bus,
	}
}

func (f *eventFanout) Broadcast(msg sse.SSEMessage) {
	if f.bus != nil {
		if err := f.bus.Publish(context.Background(), msg); err != nil {
			f.log.Warn("Redis publish failed; falling back to local broadcast", "error", err)
			f.hub.Broadcast(msg)
		}
		return
	}
	f.hub.Broadcast(msg)
}
