// Package store holds the rendered tables and publishes them to readers.
//
// This package is internal to SyncBoard. Pollers render into a [TableSink];
// the web server reads snapshots with [MemoryStore.Get] and
// [MemoryStore.GetAll]; other consumers can follow every publish through
// [MemoryStore.Subscribe].
//
// The main components are:
//
//   - [Store]: Interface defining read and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [TableSink]: The write side of one named table
//   - [Snapshot]: A complete, published table
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the system).
package store
