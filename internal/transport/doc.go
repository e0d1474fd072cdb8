// Package transport carries the dashboard socket: a websocket client that
// exchanges protocol envelopes with the harpia server, and an Adapter that
// folds inbound events into the store.
//
// A Conn owns one websocket. Inbound frames are decoded on a single read
// goroutine and delivered on Events in arrival order; writes are
// serialized. Outbound intents are fire-and-forget: a failed write is
// reported to the caller and never retried. When the socket drops, Done is
// closed and Err explains why; reconnecting is an explicit user action.
package transport
