package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayout is fixed-width so that lexical order of stored values matches
// chronological order; due-time comparisons happen in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// timestamp stores a time.Time as fixed-width UTC text.
type timestamp time.Time

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Value implements driver.Valuer.
func (t timestamp) Value() (driver.Value, error) {
	return formatTime(time.Time(t)), nil
}

// Scan implements sql.Scanner. Text written by other tools in RFC 3339 form is
// accepted as well.
func (t *timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*t = timestamp(time.Time{})
		return nil
	case time.Time:
		*t = timestamp(v.UTC())
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}

	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as timestamp", s)
}

// Time returns the wrapped time.
func (t timestamp) Time() time.Time {
	return time.Time(t)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// maxListLimit caps list queries.
const maxListLimit = 100

// normalizeLimit clamps a caller-provided limit into [1, maxListLimit].
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// nowUTC is the clock used for update timestamps.
var nowUTC = func() time.Time { return time.Now().UTC() }
