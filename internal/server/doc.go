// Package server exposes the operational HTTP endpoints.
//
//	GET /health               store connectivity and registry counts
//	GET /metrics              Prometheus exposition
//	GET /debug/subscriptions  channel -> symbols snapshot
//	GET /debug/schedule       next trigger time per job
package server
