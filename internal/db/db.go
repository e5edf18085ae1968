package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vctt94/holdem/pkg/server"
)

// DB is the sqlite-backed store.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at dbPath.
func NewDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := createTables(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{sqlDB}, nil
}

// createTables creates the necessary database tables.
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			profile_picture TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS lobbies (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hand_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			lobby_id TEXT NOT NULL,
			hand_num INTEGER NOT NULL,
			summaries TEXT,
			players TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (lobby_id) REFERENCES lobbies(id)
		)
	`)
	return err
}

// RecordHandResult persists one settled hand. The variable-shape parts
// (summaries, per-player lines) are stored as JSON columns.
func (db *DB) RecordHandResult(lobbyID string, result *server.HandResult) error {
	summaries, err := json.Marshal(result.Summaries)
	if err != nil {
		return err
	}
	players, err := json.Marshal(result.Players)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO hand_results (lobby_id, hand_num, summaries, players)
		VALUES (?, ?, ?, ?)
	`, lobbyID, result.HandNum, string(summaries), string(players))
	return err
}

// GetUsername returns the stored display name for a user.
func (db *DB) GetUsername(userID string) (string, error) {
	var username string
	err := db.QueryRow("SELECT username FROM users WHERE id = ?", userID).Scan(&username)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get username: %w", err)
	}
	return username, nil
}

// GetProfilePicture returns the stored profile picture reference.
func (db *DB) GetProfilePicture(userID string) (string, error) {
	var picture sql.NullString
	err := db.QueryRow("SELECT profile_picture FROM users WHERE id = ?", userID).Scan(&picture)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get profile picture: %w", err)
	}
	return picture.String, nil
}

// UpsertUser stores or refreshes a user's display data.
func (db *DB) UpsertUser(userID, username, profilePicture string) error {
	_, err := db.Exec(`
		INSERT INTO users (id, username, profile_picture)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = ?, profile_picture = ?
	`, userID, username, profilePicture, username, profilePicture)
	return err
}

// SetLobbyStatus records the lobby lifecycle state.
func (db *DB) SetLobbyStatus(lobbyID, status string) error {
	_, err := db.Exec(`
		INSERT INTO lobbies (id, status, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET status = ?, updated_at = CURRENT_TIMESTAMP
	`, lobbyID, status, status)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
