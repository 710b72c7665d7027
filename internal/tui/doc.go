// Package tui renders SyncBoard tables in the terminal.
//
// A [Model] is a bubbletea model holding one view per table. Pollers never
// talk to the model directly: [Forward] relays every table the store
// publishes to the running program as a [TableMsg], so the model only sees
// whole tables. Poll failures reach the footer as a [FailureMsg].
package tui
