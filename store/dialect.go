package store

import (
	"fmt"
	"strings"
	"time"
)

// Dialect holds the SQL that differs between SQLite and PostgreSQL.
type Dialect interface {
	Name() string
	Placeholder(n int) string
	Now() string
	TimestampType() string
	PrimaryKey() string
	BlobType() string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string             { return "sqlite" }
func (sqliteDialect) Placeholder(_ int) string { return "?" }
func (sqliteDialect) Now() string              { return "datetime('now','localtime')" }
func (sqliteDialect) TimestampType() string    { return "TEXT" }
func (sqliteDialect) PrimaryKey() string       { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (sqliteDialect) BlobType() string         { return "BLOB" }

type postgresDialect struct{}

func (postgresDialect) Name() string             { return "postgres" }
func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (postgresDialect) Now() string              { return "NOW()" }
func (postgresDialect) TimestampType() string    { return "TIMESTAMPTZ" }
func (postgresDialect) PrimaryKey() string       { return "BIGSERIAL PRIMARY KEY" }
func (postgresDialect) BlobType() string         { return "BYTEA" }

// parseTime converts a scanned timestamp value to time.Time.
// SQLite returns strings, Postgres returns time.Time.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if t == "" {
			return time.Time{}
		}
		for _, layout := range []string{
			"2006-01-02 15:04:05",
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05-07:00",
			"2006-01-02 15:04:05.999999-07:00",
		} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func parseTimePtr(v any) *time.Time {
	t := parseTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	return rebind(query, postgresDialect{})
}

func rebind(query string, d Dialect) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString(d.Placeholder(n))
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
