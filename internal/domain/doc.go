// Package domain contains the core entities of the progress engine: users,
// XP events, spaced-repetition review records, quiz results, leaderboard
// entries, telemetry records and the read-only content items they refer to.
// It is independent of any storage or transport mechanism.
package domain
