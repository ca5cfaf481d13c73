// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

// Package testinfra provides container helpers for integration tests.
//
// Everything except this file is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # NATS Container
//
// NATSContainer runs a real NATS server with JetStream so the event bus can
// be tested against the same broker it uses in production:
//
//	func TestNATSBus(t *testing.T) {
//	    testinfra.RequireDocker(t)
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.TerminateOnCleanup(t, nats)
//
//	    cfg := config.EventsConfig{Transport: config.TransportNATS, NATSURL: nats.URL}
//	    bus, err := eventprocessor.NewBus(ctx, &cfg)
//	    // ...
//	}
//
// # CI Considerations
//
// Tests are skipped when no container provider is healthy. The first run
// pulls the image; later runs use the local cache.
package testinfra
