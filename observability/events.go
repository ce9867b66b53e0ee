// Package observability bridges the reward notification stream into the
// telemetry layer.
package observability

import (
	"strconv"

	"pointsledger/core/events"
	"pointsledger/core/types"
	"pointsledger/native/rewards"
	"pointsledger/observability/metrics"
)

// payloadCarrier is satisfied by reward events that expose their structured
// payload.
type payloadCarrier interface {
	Event() *types.Event
}

// MetricsEmitter records prometheus counters for every reward event before
// forwarding it to the wrapped emitter. Wrap the host's emitter with it when
// constructing the engine.
type MetricsEmitter struct {
	next events.Emitter
}

// NewMetricsEmitter decorates next with metrics recording. A nil next is
// replaced with a no-op emitter.
func NewMetricsEmitter(next events.Emitter) *MetricsEmitter {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &MetricsEmitter{next: next}
}

// Emit implements the events.Emitter interface.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	registry := metrics.Rewards()
	registry.ObserveOperation(evt.EventType())
	if carrier, ok := evt.(payloadCarrier); ok {
		if payload := carrier.Event(); payload != nil {
			switch payload.Type {
			case rewards.EventTypeRewardRedeemed:
				registry.ObserveEscrowRedeemed(attrFloat(payload, "amount"))
			case rewards.EventTypeRewardReferral, rewards.EventTypeRewardTriggered:
				registry.ObserveBonusPoints(attrFloat(payload, "bonus"))
			}
		}
	}
	m.next.Emit(evt)
}

func attrFloat(evt *types.Event, key string) float64 {
	if evt == nil || evt.Attributes == nil {
		return 0
	}
	value, err := strconv.ParseFloat(evt.Attributes[key], 64)
	if err != nil {
		return 0
	}
	return value
}
