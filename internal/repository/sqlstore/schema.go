package sqlstore

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      VARCHAR(100) NOT NULL UNIQUE,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	salt          TEXT NOT NULL,
	full_name     VARCHAR(200) NOT NULL DEFAULT '',
	role          VARCHAR(16) NOT NULL DEFAULT 'STUDENT' CHECK (role IN ('STUDENT', 'ADMIN')),
	department    VARCHAR(200) NOT NULL DEFAULT '',
	student_id    VARCHAR(64) NOT NULL DEFAULT '',
	year          INTEGER,
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id               UUID PRIMARY KEY,
	title            VARCHAR(200) NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	venue            VARCHAR(200) NOT NULL DEFAULT '',
	date             TIMESTAMPTZ NOT NULL,
	max_participants INTEGER CHECK (max_participants IS NULL OR max_participants > 0),
	created_by       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status           VARCHAR(16) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	rejection_reason TEXT,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events (date);

CREATE TABLE IF NOT EXISTS registrations (
	id            UUID PRIMARY KEY,
	event_id      UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status        VARCHAR(16) NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	registered_at TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_registrations_user_id ON registrations (user_id);
CREATE INDEX IF NOT EXISTS idx_registrations_status ON registrations (status);
CREATE INDEX IF NOT EXISTS idx_registrations_registered_at ON registrations (registered_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	salt          TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'STUDENT' CHECK (role IN ('STUDENT', 'ADMIN')),
	department    TEXT NOT NULL DEFAULT '',
	student_id    TEXT NOT NULL DEFAULT '',
	year          INTEGER,
	active        BOOLEAN NOT NULL DEFAULT 1,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	venue            TEXT NOT NULL DEFAULT '',
	date             DATETIME NOT NULL,
	max_participants INTEGER CHECK (max_participants IS NULL OR max_participants > 0),
	created_by       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status           TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	rejection_reason TEXT,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events (date);

CREATE TABLE IF NOT EXISTS registrations (
	id            TEXT PRIMARY KEY,
	event_id      TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status        TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	registered_at DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL,
	UNIQUE (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_registrations_user_id ON registrations (user_id);
CREATE INDEX IF NOT EXISTS idx_registrations_status ON registrations (status);
CREATE INDEX IF NOT EXISTS idx_registrations_registered_at ON registrations (registered_at);
`
