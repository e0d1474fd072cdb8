// Package editor implements the button configuration form without any
// rendering: building a form from a saved button, editing action cards,
// populating pickers from the live snapshots, and reading the form back
// into a ButtonConfig.
//
// Reading a form drops cards whose kind was left empty, and drops the
// "off" list entirely when the button is not stateful, so stale off-cards
// from an earlier edit are never saved.
//
// Pickers always keep the saved value selectable. When an upstream tool is
// offline its scenes or hotkeys are missing from the live snapshot; the
// saved value is then offered as a marked "[Salvo]" option instead of being
// silently discarded.
package editor
