// Package store holds the panel's single source of truth: the deck
// configuration pushed by the backend plus the client-only UI state derived
// from it (current deck, view mode, per-slot toggle state, and the live
// snapshots used by the editor pickers).
//
// All reads and writes go through Get, Set and the typed helpers.
// Subscribers are notified synchronously, in mutation order. A mutation
// made from inside a listener is queued and delivered once the running
// listener returns, so listener callbacks never interleave. Mutations from
// other goroutines wait for the running delivery, and every mutating call
// returns after its own listeners ran.
//
// # Reconciliation
//
// UpdateDeckConfig is the only way a new configuration enters the store,
// whether it came from the initial fetch, a socket push, or a local
// optimistic rewrite. The configuration is replaced wholesale, the current
// deck falls back to the start deck (then "root") when it disappears, and
// toggle state is rebuilt for the stateful slots of the current deck,
// keeping the previous on/off value of slots that survived. Subscribers see
// a single deckConfig notification per update.
package store
