/*
Package monitoring provides Prometheus metrics for the scan pipeline.

# Overview

Metrics tracks what the producer and the consumer pool do, plus the requests
served by the optional status server. Every Metrics value owns a private
registry, and every recording method is safe on a nil receiver, so packages
can record unconditionally.

# Metrics

- procwatch_items_produced_total, procwatch_items_consumed_total{consumer}
- procwatch_item_elapsed_seconds (histogram)
- procwatch_buffer_filled, procwatch_buffer_capacity
- procwatch_consumers_active, procwatch_state
- procwatch_scan_skipped_total
- procwatch_http_requests_total, procwatch_http_request_duration_seconds
- procwatch_uptime_seconds, plus Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
