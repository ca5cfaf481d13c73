// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Store:
  - store_transaction_duration_seconds{backend,mode}
  - store_transactions_total{backend,mode,outcome}

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Authorization:
  - authz_decisions_total{role,object,action,decision}
  - authz_cache_hits_total

Catalog:
  - catalog_review_writes_total{kind}
  - aggregator_recompute_duration_seconds{kind}
  - aggregator_recomputes_total{kind,outcome}
  - aggregator_reconcile_last_run_timestamp_seconds
  - aggregator_reconcile_repairs_total{kind}

Events:
  - events_published_total{topic,result}
  - events_handled_total{handler,result}
  - events_handling_duration_seconds{handler}
  - circuit_breaker_state{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Backup:
  - backup_snapshots_total{trigger,outcome}
  - backup_snapshot_duration_seconds
  - backup_last_success_timestamp_seconds
  - backup_last_size_bytes
  - backup_snapshots_pruned_total

WebSocket:
  - websocket_connections
  - websocket_messages_sent_total

# Usage

	start := time.Now()
	err := doWork()
	metrics.RecordRecompute("game_rating", time.Since(start), err)

# Thread Safety

All recording helpers are safe for concurrent use; Prometheus collectors are
internally synchronized.
*/
package metrics
