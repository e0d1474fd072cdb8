// Package live holds the channel side of the control panel: the activity
// feed, stream statistics with the uptime clock, category search for
// channel updates, and the upstream service status board with its manual
// reconnect cooldown.
//
// Everything here is plain state guarded by a mutex. Time is read through
// an injectable clock so the terminal UI decides when to redraw.
package live

import "time"

// Clock returns the current time.
type Clock func() time.Time
