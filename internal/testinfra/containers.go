// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

//go:build integration

package testinfra

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips t when no container runtime answers.
func RequireDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// TerminateOnCleanup terminates c when t finishes. Termination errors are
// reported as test failures.
func TerminateOnCleanup(t *testing.T, c testcontainers.Container) {
	t.Helper()
	testcontainers.CleanupContainer(t, c)
}

// Status describes a running container for assertions and debug output.
type Status struct {
	ID      string
	State   string
	Running bool
	// Ports maps "4222/tcp" style container ports to host ports.
	Ports map[string]string
}

// Inspect reports the state and port bindings of c.
func Inspect(ctx context.Context, c testcontainers.Container) (*Status, error) {
	state, err := c.State(ctx)
	if err != nil {
		return nil, err
	}
	ports, err := c.Ports(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		ID:      c.GetContainerID(),
		State:   state.Status,
		Running: state.Running,
		Ports:   make(map[string]string, len(ports)),
	}
	for port, bindings := range ports {
		if len(bindings) > 0 {
			st.Ports[string(port)] = bindings[0].HostPort
		}
	}
	return st, nil
}
