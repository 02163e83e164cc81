// Package middleware provides the gin middleware used by the status server:
// a global rate limiter, optional CORS for read-only dashboards and a zap
// request logger.
package middleware
