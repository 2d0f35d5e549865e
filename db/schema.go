package db

import (
	"database/sql"
	"fmt"
)

const Schema = `
-- Create users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher')),
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

-- Create refresh_tokens table
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL,
    token VARCHAR(255) UNIQUE NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Highest unlocked level per user
CREATE TABLE IF NOT EXISTS user_progress (
    user_id INTEGER PRIMARY KEY,
    highest_level SMALLINT NOT NULL DEFAULT 1 CHECK (highest_level BETWEEN 1 AND 3),
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Latest result per user and level, overwritten on re-attempt
CREATE TABLE IF NOT EXISTS level_results (
    user_id INTEGER NOT NULL,
    level SMALLINT NOT NULL CHECK (level BETWEEN 1 AND 3),
    score INTEGER NOT NULL CHECK (score >= 0),
    total_questions INTEGER NOT NULL CHECK (total_questions >= score),
    answers JSONB NOT NULL DEFAULT '[]',
    time_spent INTEGER NOT NULL DEFAULT 0,
    completed_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, level),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Every submission, append only
CREATE TABLE IF NOT EXISTS quiz_attempts (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL,
    level SMALLINT NOT NULL CHECK (level BETWEEN 1 AND 3),
    score INTEGER NOT NULL CHECK (score >= 0),
    total_questions INTEGER NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_level ON quiz_attempts (user_id, level);
`

// InitSchema initializes the database schema
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	if err != nil {
		return fmt.Errorf("error initializing database schema: %w", err)
	}
	return nil
}
