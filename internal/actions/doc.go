// Package actions maps the dialogue engine's named actions onto the core
// engines. A Dispatcher owns the action registry; each handler reads the
// turn's Request (user, entities, raw text, conversation state) and returns a
// Response made of message segments and state updates.
//
// Handlers never hold conversation state between turns: everything they need
// arrives in Request.State and everything they change leaves in
// Response.StateUpdates.
package actions
