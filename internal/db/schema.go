package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS locations (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    room          TEXT NOT NULL DEFAULT '',
    storage_type  TEXT NOT NULL CHECK (storage_type IN ('box', 'hanging', 'shelf', 'rack', 'other')),
    storage_label TEXT NOT NULL DEFAULT '',
    image         BLOB,
    image_mime    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS costumes (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    size           TEXT NOT NULL DEFAULT '',
    color          TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL DEFAULT '',
    total_quantity INTEGER NOT NULL CHECK (total_quantity >= 1),
    location_id    TEXT NOT NULL REFERENCES locations(id),
    notes          TEXT NOT NULL DEFAULT '',
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_costumes_location ON costumes(location_id);

CREATE TABLE IF NOT EXISTS costume_images (
    id         INTEGER PRIMARY KEY,
    costume_id TEXT NOT NULL REFERENCES costumes(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    image      BLOB NOT NULL,
    image_mime TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checkouts (
    id             TEXT PRIMARY KEY,
    costume_id     TEXT NOT NULL REFERENCES costumes(id) ON DELETE CASCADE,
    checked_out_by TEXT NOT NULL,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    due_date       DATETIME NOT NULL,
    checked_out_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_checkouts_costume ON checkouts(costume_id);

CREATE TABLE IF NOT EXISTS events (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    date       DATETIME NOT NULL,
    all_day    INTEGER NOT NULL DEFAULT 0,
    completed  INTEGER NOT NULL DEFAULT 0,
    organizer  TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    icon       TEXT NOT NULL DEFAULT '',
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assigned_costumes (
    id           TEXT PRIMARY KEY,
    event_id     TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    costume_id   TEXT REFERENCES costumes(id) ON DELETE SET NULL,
    costume_name TEXT NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity >= 1),
    position     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assigned_event ON assigned_costumes(event_id);
CREATE INDEX IF NOT EXISTS idx_assigned_costume ON assigned_costumes(costume_id);

CREATE TABLE IF NOT EXISTS activity (
    id          INTEGER PRIMARY KEY,
    type        TEXT NOT NULL CHECK (type IN (
                    'costumeAdded', 'costumeEdited', 'costumeDeleted',
                    'checkedIn', 'checkedOut',
                    'eventAdded', 'eventEdited', 'eventDeleted')),
    description TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
