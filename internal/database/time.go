package database

import (
	"fmt"
	"strings"
	"time"
)

// timeFormats covers what go-sqlite3 writes for time.Time values and what
// SQLite's CURRENT_TIMESTAMP produces.
var timeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time scans timestamp columns regardless of whether the driver hands back a
// time.Time or the raw text (SQLite drops the declared type on RETURNING).
// Values are normalized to UTC.
type Time struct {
	Time time.Time
}

func (t *Time) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("database: cannot scan %T into Time", src)
}

func (t *Time) parse(s string) error {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range timeFormats {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("database: unrecognized timestamp %q", s)
}
