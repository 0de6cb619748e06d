package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

const defaultMatchLimit = 20

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// MatchRow represents a completed match
type MatchRow struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name"`
	Level      string    `json:"level"`
	StartedAt  time.Time `json:"started_at"`
	Duration   float64   `json:"duration"`
	Ticks      uint64    `json:"ticks"`
	WinnerID   string    `json:"winner_id,omitempty"`
	WinnerName string    `json:"winner_name,omitempty"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		room_name TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		ticks INTEGER NOT NULL DEFAULT 0,
		winner_id TEXT NOT NULL DEFAULT '',
		winner_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS match_tanks (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		tank_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		is_player INTEGER NOT NULL DEFAULT 0,
		place INTEGER NOT NULL DEFAULT 0,
		shots INTEGER NOT NULL DEFAULT 0,
		damage_taken REAL NOT NULL DEFAULT 0,
		survived INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, tank_id)
	);

	CREATE TABLE IF NOT EXISTS room_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		room_id TEXT NOT NULL,
		tank_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at);
	CREATE INDEX IF NOT EXISTS idx_room_events_room ON room_events(room_id);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Error("db migration failed", "err", err)
	}
	return err
}

// RecordMatch stores a finished match with its tanks and returns the match ID
func (db *DB) RecordMatch(m MatchResult) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO matches (room_id, room_name, level, started_at, duration, ticks, winner_id, winner_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RoomID, m.RoomName, m.Level, m.StartedAt.UnixMilli(), m.Duration, int64(m.Ticks), m.WinnerID, m.WinnerName,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range m.Tanks {
		_, err := tx.Exec(
			`INSERT INTO match_tanks (match_id, tank_id, name, color, is_player, place, shots, damage_taken, survived)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, t.TankID, t.Name, t.Color, t.IsPlayer, t.Place, t.Shots, t.DamageTaken, t.Survived,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting tank %s: %w", t.TankID, err)
		}
	}
	return id, tx.Commit()
}

// RecentMatches returns the latest matches, newest first
func (db *DB) RecentMatches(limit int) ([]MatchRow, error) {
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	rows, err := db.conn.Query(`
		SELECT id, room_id, room_name, level, started_at, duration, ticks, winner_id, winner_name
		FROM matches
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []MatchRow{}
	for rows.Next() {
		var r MatchRow
		var started, ticks int64
		if err := rows.Scan(&r.ID, &r.RoomID, &r.RoomName, &r.Level, &started, &r.Duration, &ticks, &r.WinnerID, &r.WinnerName); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		r.Ticks = uint64(ticks)
		result = append(result, r)
	}
	return result, rows.Err()
}

// MatchTanks returns the ranked tanks of one match
func (db *DB) MatchTanks(matchID int64) ([]MatchTank, error) {
	rows, err := db.conn.Query(`
		SELECT tank_id, name, color, is_player, place, shots, damage_taken, survived
		FROM match_tanks
		WHERE match_id = ?
		ORDER BY place, tank_id`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MatchTank
	for rows.Next() {
		var t MatchTank
		if err := rows.Scan(&t.TankID, &t.Name, &t.Color, &t.IsPlayer, &t.Place, &t.Shots, &t.DamageTaken, &t.Survived); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
