// Package store defines interfaces for data persistence operations.
// These interfaces abstract the embedded database from the engine's core
// logic. Implementations report I/O failures as *StorageError so that callers
// can end a turn gracefully instead of crashing the conversation.
package store
