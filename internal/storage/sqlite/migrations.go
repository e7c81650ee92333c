package sqlite

import "database/sql"

// schema sets up the database. It runs on startup and is idempotent.
// credit_transactions is an append-only log: rows are only ever inserted,
// moved from requested to accepted, or deleted while still requested.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS credit_groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    parent_reference TEXT NOT NULL DEFAULT '',
    debt_limit REAL NOT NULL,
    credit_limit REAL NOT NULL,
    created_at INTEGER NOT NULL,
    CHECK (debt_limit < credit_limit)
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    name TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, member_id),
    FOREIGN KEY (group_id) REFERENCES credit_groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS credit_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id TEXT NOT NULL,
    from_member TEXT NOT NULL,
    to_member TEXT NOT NULL,
    amount REAL NOT NULL CHECK (amount > 0),
    status TEXT NOT NULL CHECK (status IN ('requested', 'accepted')),
    accepter_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    accepted_at INTEGER,
    CHECK (from_member <> to_member),
    FOREIGN KEY (group_id, from_member) REFERENCES group_members(group_id, member_id),
    FOREIGN KEY (group_id, to_member) REFERENCES group_members(group_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_group_members_member_id ON group_members(member_id);
CREATE INDEX IF NOT EXISTS idx_credit_transactions_group ON credit_transactions(group_id, status);
CREATE INDEX IF NOT EXISTS idx_credit_transactions_from ON credit_transactions(group_id, from_member);
CREATE INDEX IF NOT EXISTS idx_credit_transactions_to ON credit_transactions(group_id, to_member);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
