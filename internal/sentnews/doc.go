// Package sentnews implements the Dedup Store component.
//
// The Dedup Store records which news items were delivered to which channel:
//   - Keyed by (news_id, channel_id); the same article may be recorded once
//     per channel and independently for different channels
//   - RecordSent is an atomic insert-or-duplicate, so racing writers never
//     fail on an existing key
//   - Records are evicted once sent_at is older than the retention window
//
// Drivers:
//   - postgres: sent_news table via pgxpool (ON CONFLICT DO NOTHING)
//   - redis: SET NX per key plus a sorted-set index on sent_at
//   - memory: process-local map, for tests and development
package sentnews
