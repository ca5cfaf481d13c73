// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"time"
)

// ComponentHealth is the health of one event processing component.
type ComponentHealth struct {
	Name      string         `json:"name"`
	Healthy   bool           `json:"healthy"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	LastCheck time.Time      `json:"last_check"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthCheck reports whether the bus router is processing messages.
func (b *Bus) HealthCheck(_ context.Context) ComponentHealth {
	health := ComponentHealth{
		Name:      "events",
		LastCheck: time.Now(),
		Details: map[string]any{
			"transport":   b.transport.Name(),
			"synchronous": b.transport.Synchronous(),
			"handlers":    len(b.router.Handlers()),
		},
	}
	if b.breaker != nil {
		health.Details["circuit_breaker"] = CircuitBreakerState(b.breaker)
	}

	if b.router.IsRunning() {
		health.Healthy = true
		health.Message = "Router is running"
	} else {
		health.Error = "Router is not running"
	}
	return health
}
