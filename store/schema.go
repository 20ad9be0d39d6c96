package store

import "strings"

// table is one migration step. DDL placeholders are filled in per dialect:
// {pk} primary key column, {ts} timestamp type, {now} current time,
// {blob} binary type.
type table struct {
	name string
	ddl  string
}

var tables = []table{
	// Journal of every hall call, dispatched or rejected. History only.
	{"lift_requests", `
CREATE TABLE IF NOT EXISTS lift_requests (
    id          {pk},
    request_id  TEXT NOT NULL UNIQUE,
    source      TEXT NOT NULL DEFAULT 'http',
    floor       INTEGER NOT NULL,
    direction   TEXT NOT NULL,
    lift_id     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    created_at  {ts} NOT NULL DEFAULT ({now})
);
CREATE INDEX IF NOT EXISTS idx_lift_requests_lift ON lift_requests(lift_id);
CREATE INDEX IF NOT EXISTS idx_lift_requests_status ON lift_requests(status);`},

	{"outbox", `
CREATE TABLE IF NOT EXISTS outbox (
    id          {pk},
    topic       TEXT NOT NULL,
    payload     {blob} NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    station_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  {ts} NOT NULL DEFAULT ({now}),
    sent_at     {ts}
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;`},

	// Lift history: arrivals, parks, boardings and car calls keyed by lift id.
	{"audit_log", `
CREATE TABLE IF NOT EXISTS audit_log (
    id          {pk},
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    old_value   TEXT NOT NULL DEFAULT '',
    new_value   TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT 'system',
    created_at  {ts} NOT NULL DEFAULT ({now})
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);`},

	{"admin_users", `
CREATE TABLE IF NOT EXISTS admin_users (
    id            {pk},
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    {ts} NOT NULL DEFAULT ({now})
);`},
}

func (t table) render(d Dialect) string {
	return strings.NewReplacer(
		"{pk}", d.PrimaryKey(),
		"{ts}", d.TimestampType(),
		"{now}", d.Now(),
		"{blob}", d.BlobType(),
	).Replace(t.ddl)
}
