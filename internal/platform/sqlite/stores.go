package sqlite

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/store"
)

// Stores bundles every SQLite-backed store over one database handle.
type Stores struct {
	DB          *sqlx.DB
	Users       store.UserStore
	XP          store.XPStore
	Reviews     store.SRSReviewStore
	QuizResults store.QuizResultStore
	Leaderboard store.LeaderboardStore
	Telemetry   store.TelemetryStore
}

// NewStores wires all stores to db.
func NewStores(db *sqlx.DB, logger *slog.Logger) *Stores {
	return &Stores{
		DB:          db,
		Users:       NewSQLiteUserStore(db, logger),
		XP:          NewSQLiteXPStore(db, logger),
		Reviews:     NewSQLiteSRSReviewStore(db, logger),
		QuizResults: NewSQLiteQuizResultStore(db, logger),
		Leaderboard: NewSQLiteLeaderboardStore(db, logger),
		Telemetry:   NewSQLiteTelemetryStore(db, logger),
	}
}
