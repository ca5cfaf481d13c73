// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

//go:build integration

package eventprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/gamecatalog/internal/testinfra"
)

func TestNATSBusDelivery_Container(t *testing.T) {
	testinfra.RequireDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	nats, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("NewNATSContainer() = %v", err)
	}
	testinfra.TerminateOnCleanup(t, nats)

	assertNATSDelivery(t, nats.URL)
}
