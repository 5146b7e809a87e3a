package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL DEFAULT '',
    token       TEXT,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chats (
    user_id     TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    messages    TEXT NOT NULL DEFAULT '[]',
    updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    created_by_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    tags            TEXT NOT NULL DEFAULT '[]',
    category        TEXT NOT NULL CHECK (category IN ('work', 'personal', 'ideas', 'tasks')),
    created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes(created_by_id, created_at DESC);
`
