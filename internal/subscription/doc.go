// Package subscription implements the Subscription Registry component.
//
// The Subscription Registry:
//   - Maps chat channel IDs to the set of symbols each channel tracks
//   - Normalizes symbols to uppercase before storage and comparison
//   - Never holds a channel with an empty symbol set
//   - Serves the union of tracked symbols and the reverse symbol -> channels
//     lookup to the notification jobs
//
// State is in-memory only and does not survive a restart.
package subscription
