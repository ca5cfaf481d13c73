// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
)

// fakeStream satisfies jetstream.Stream; none of its methods are called.
type fakeStream struct {
	jetstream.Stream
}

type fakeJetStream struct {
	exists    bool
	lookupErr error
	created   []jetstream.StreamConfig
	updated   []jetstream.StreamConfig
}

func (f *fakeJetStream) Stream(context.Context, string) (jetstream.Stream, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if !f.exists {
		return nil, jetstream.ErrStreamNotFound
	}
	return fakeStream{}, nil
}

func (f *fakeJetStream) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.created = append(f.created, cfg)
	f.exists = true
	return fakeStream{}, nil
}

func (f *fakeJetStream) UpdateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.updated = append(f.updated, cfg)
	return fakeStream{}, nil
}

func TestStreamInitializerEnsureStream(t *testing.T) {
	ctx := context.Background()
	js := &fakeJetStream{}
	cfg := DefaultStreamConfig()

	si, err := NewStreamInitializer(js, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if si.IsHealthy(ctx) {
		t.Error("expected unhealthy before the stream exists")
	}

	if _, err := si.EnsureStream(ctx); err != nil {
		t.Fatalf("EnsureStream() = %v", err)
	}
	if len(js.created) != 1 || js.created[0].Name != DefaultStreamName {
		t.Fatalf("created = %+v", js.created)
	}
	if got := js.created[0].Subjects; len(got) != 1 || got[0] != SubjectWildcard {
		t.Errorf("subjects = %v", got)
	}

	if _, err := si.EnsureStream(ctx); err != nil {
		t.Fatalf("second EnsureStream() = %v", err)
	}
	if len(js.updated) != 1 {
		t.Errorf("expected an update on the second call, got %d", len(js.updated))
	}
	if !si.IsHealthy(ctx) {
		t.Error("expected healthy once the stream exists")
	}
}

func TestStreamInitializerErrors(t *testing.T) {
	cfg := DefaultStreamConfig()
	if _, err := NewStreamInitializer(nil, &cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil js: %v", err)
	}
	if _, err := NewStreamInitializer(&fakeJetStream{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil cfg: %v", err)
	}

	boom := errors.New("timeout")
	si, _ := NewStreamInitializer(&fakeJetStream{lookupErr: boom}, &cfg)
	if _, err := si.EnsureStream(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected lookup error, got %v", err)
	}
}
