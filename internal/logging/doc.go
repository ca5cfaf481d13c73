// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package logging provides centralized zerolog-based logging for Gamecatalog.

All packages log through the global logger configured once by Init. JSON is
the default output; console output is meant for local development.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("game_id", id).Msg("Game created")
	logging.Error().Err(err).Msg("Recompute failed")

	// With request context (request_id, correlation_id)
	logging.Ctx(ctx).Info().Str("user_id", uid).Msg("Review submitted")

# Adapters

Libraries that expect log/slog (sutureslog, watermill) receive an
slog.Logger built by NewSlogLogger; records end up in the same zerolog
output with the same level filter.

# Specialized Loggers

  - EventLogger: publish and handle outcomes for domain events
  - AuditLogger: login, registration, role and moderation actions, with
    identifiers masked by the Sanitize helpers

# Best Practices

Always terminate log chains with .Msg() or .Send():

	logging.Info().Str("key", "value").Msg("message")  // Correct
	logging.Info().Str("key", "value")                 // WRONG - log not emitted
*/
package logging
