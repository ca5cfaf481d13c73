// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*ScheduledJobService)(nil)

func TestNewScheduledJobService_InvalidSchedule(t *testing.T) {
	_, err := NewScheduledJobService("reconcile", "every now and then", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestScheduledJobService_RunOnStart(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	svc, err := NewScheduledJobService("reconcile", "@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		done <- struct{}{}
		return errors.New("job errors are logged, not returned")
	}, WithRunOnStart(), WithJobTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewScheduledJobService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("expected 1 run, got %d", runs.Load())
	}
	if svc.String() != "reconcile" {
		t.Errorf("expected name reconcile, got %q", svc.String())
	}
}

func TestScheduledJobService_RunsDoNotOverlap(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32
	svc, err := NewScheduledJobService("store-gc", "@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	if err != nil {
		t.Fatalf("NewScheduledJobService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan struct{})
	go func() {
		svc.run(ctx)
		close(first)
	}()
	for runs.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	svc.run(ctx) // skipped while the first run holds the lock
	close(release)
	<-first

	if runs.Load() != 1 {
		t.Errorf("expected overlapping run to be skipped, got %d runs", runs.Load())
	}
}

func TestScheduledJobService_JobTimeout(t *testing.T) {
	deadlineHit := make(chan error, 1)
	svc, err := NewScheduledJobService("reconcile", "@daily", func(ctx context.Context) error {
		<-ctx.Done()
		deadlineHit <- ctx.Err()
		return ctx.Err()
	}, WithJobTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewScheduledJobService: %v", err)
	}

	svc.run(context.Background())

	if err := <-deadlineHit; !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected run context to time out, got %v", err)
	}
}
