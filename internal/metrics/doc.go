// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Job firings by outcome (completed, dropped, panicked) and duration
//   - Provider fetches by kind and outcome
//   - Deliveries by kind and status
//   - Dedup store outcomes
//   - Current subscription counts
//
// All methods are safe on a nil *Metrics, so components can be built
// without instrumentation in tests.
package metrics
