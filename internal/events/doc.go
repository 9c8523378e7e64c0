// Package events publishes a record of every successful delivery.
//
// Events are keyed by symbol and JSON encoded. Publishing is best effort:
// a failed publish is logged by the caller and never blocks or fails a
// delivery. When no brokers are configured the Nop publisher is used.
package events
