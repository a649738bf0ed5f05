// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit events after their transaction commits, without knowing which
// handlers will process them. Handlers are observational: a failing handler is
// logged by the emitter's caller and never fails the operation that emitted
// the event.
//
// The primary components are:
// - Event: a typed, JSON-payload notification (xp.awarded, srs.reviewed, ...)
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
// - UsageHandler: records a usage_stats row for every event
package events
