/*
Package http serves the status surface of a running scan.

Routes:

	GET /healthz  liveness, 503 once the pipeline is shutting down
	GET /stats    lifecycle.Snapshot as JSON
	GET /metrics  Prometheus exposition of the instance registry

The router carries the request logger, metrics middleware, optional CORS
and the global rate limiter from the middleware package.
*/
package http
