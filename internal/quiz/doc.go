// Package quiz implements the trivia session state machine.
//
// A Session is a plain value. Every entry point takes the current session and
// returns the next one; nothing is held between turns, so the caller decides
// where sessions live (the dialogue state, a test, a CLI loop).
package quiz
