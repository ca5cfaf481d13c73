// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package eventprocessor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecatalog/internal/logging"
)

// Message metadata keys.
const (
	MetadataEventType     = "event_type"
	MetadataSchemaVersion = "schema_version"
)

// NewMessage validates and encodes event into a Watermill message. The
// message UUID is the event ID so redeliveries can be deduplicated. The
// correlation ID of ctx is carried in the metadata when present.
func NewMessage(ctx context.Context, event Event) (*message.Message, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID(), data)
	msg.Metadata.Set(MetadataEventType, event.Topic())
	msg.Metadata.Set(MetadataSchemaVersion, strconv.Itoa(SchemaVersion))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg, nil
}

// Decode unmarshals msg into event and validates it.
func Decode(msg *message.Message, event Event) error {
	if err := json.Unmarshal(msg.Payload, event); err != nil {
		return fmt.Errorf("unmarshal %s: %w", msg.Metadata.Get(MetadataEventType), err)
	}
	return event.Validate()
}

// messageContext returns the message context enriched with its correlation
// ID so handler logs can be tied back to the originating request.
func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx
}
