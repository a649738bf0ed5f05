// Package service contains the application-specific use cases: the XP ledger,
// spaced-repetition reviews and usage statistics. Services orchestrate the
// store interfaces (defined in internal/store) and apply transactional
// boundaries when an operation spans more than one store.
//
// Every write that touches more than one table runs inside a single
// transaction, so callers never observe partial state. Events are emitted only
// after the transaction commits, and an event handler failure never fails the
// operation.
//
// Services receive their dependencies through constructor injection and depend
// on store interfaces, never on a specific storage implementation.
package service
