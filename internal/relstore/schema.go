package relstore

// SQLiteSchema is the relationship graph table for SQLite databases.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS room_relationships (
    id                TEXT PRIMARY KEY,
    from_type         TEXT NOT NULL,
    to_type           TEXT NOT NULL,
    relationship_type TEXT NOT NULL
                      CHECK(relationship_type IN ('MATERIAL_FLOW', 'PERSONNEL_FLOW', 'REQUIRES_ACCESS', 'PROHIBITED_NEAR')),
    priority          INTEGER NOT NULL DEFAULT 5,
    flow_type         TEXT NOT NULL DEFAULT '',
    flow_direction    TEXT NOT NULL DEFAULT '',
    reason            TEXT NOT NULL DEFAULT '',
    created_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_room_relationships_pair ON room_relationships(from_type, to_type);
`

// PostgresSchema is the same table for PostgreSQL.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS room_relationships (
    id                TEXT PRIMARY KEY,
    from_type         TEXT NOT NULL,
    to_type           TEXT NOT NULL,
    relationship_type TEXT NOT NULL
                      CHECK(relationship_type IN ('MATERIAL_FLOW', 'PERSONNEL_FLOW', 'REQUIRES_ACCESS', 'PROHIBITED_NEAR')),
    priority          INTEGER NOT NULL DEFAULT 5,
    flow_type         TEXT NOT NULL DEFAULT '',
    flow_direction    TEXT NOT NULL DEFAULT '',
    reason            TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_room_relationships_pair ON room_relationships(from_type, to_type);
`
