// Package panel wires the deck core together: it owns the store, the
// dispatcher and the renderer, talks to the server through the REST client
// and the dashboard socket, and exposes the operations a host UI calls.
//
// Writes never mutate local state directly. After a save or delete the
// server pushes the new configuration over the socket, and that push is
// what the grid renders. Reorder is the exception: the grid is rewritten
// optimistically and the layout saved afterwards; a failed save is
// reported but not rolled back, since the next push is authoritative.
package panel
