package core

import (
	"github.com/aretw0/introspection"
)

// BrokerState exposes internal state for observability.
type BrokerState struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
}

// State implements introspection.Introspectable.
func (b *Broker) State() any {
	return BrokerState{
		Subscribers: b.Len(),
		Published:   b.published.Load(),
	}
}

// ComponentType implements introspection.Component.
func (b *Broker) ComponentType() string {
	return "broker"
}

var _ introspection.Introspectable = (*Broker)(nil)
var _ introspection.Component = (*Broker)(nil)
