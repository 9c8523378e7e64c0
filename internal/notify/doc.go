// Package notify runs the scheduled jobs that turn provider data into chat
// messages.
//
// Three jobs share one Scheduler:
//   - price: at fixed times of day, fetch a quote per tracked symbol and
//     send it to every subscribing channel
//   - news: on an interval, fetch recent company news per tracked symbol and
//     send each item to every subscribing channel that has not seen it
//   - cleanup: on an interval, evict old sent-news records
//
// Each job is single-flight. A trigger that fires while the same job is
// still running is dropped, not queued. Provider calls are spaced by a Pacer.
//
// The Dispatcher does the per-symbol fan-out. Channels are resolved from the
// registry at delivery time, so a channel that unsubscribes mid-cycle stops
// receiving messages for that symbol immediately.
package notify
