// Package model defines shared data types used across tickerwatch.
//
// Conventions:
//   - Symbols: uppercase ticker identifiers (e.g., "AAPL")
//   - Channel IDs: opaque strings as issued by the chat platform
//   - Prices: float64 in the quote currency, as reported by the provider
//   - News IDs: provider identifiers rendered as decimal strings
package model
