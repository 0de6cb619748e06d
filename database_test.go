package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleMatch(roomID string, started time.Time) MatchResult {
	return MatchResult{
		RoomID:     roomID,
		RoomName:   "Arena",
		Level:      "Duel",
		StartedAt:  started,
		Duration:   42.5,
		Ticks:      2550,
		WinnerID:   "a",
		WinnerName: "Alice",
		Tanks: []MatchTank{
			{TankID: "b", Name: "Bob", Color: "Blue", IsPlayer: true, Place: 2, Shots: 3, DamageTaken: 110},
			{TankID: "a", Name: "Alice", Color: "Red", IsPlayer: true, Place: 1, Shots: 4, DamageTaken: 20, Survived: true},
		},
	}
}

func TestRecordMatch(t *testing.T) {
	db := openTestDB(t)
	started := time.UnixMilli(1_700_000_000_000)

	id, err := db.RecordMatch(sampleMatch("room-1", started))
	require.NoError(t, err)
	assert.Positive(t, id)

	matches, err := db.RecentMatches(10)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, id, m.ID)
	assert.Equal(t, "room-1", m.RoomID)
	assert.Equal(t, "Arena", m.RoomName)
	assert.Equal(t, "Duel", m.Level)
	assert.True(t, started.Equal(m.StartedAt))
	assert.Equal(t, 42.5, m.Duration)
	assert.Equal(t, uint64(2550), m.Ticks)
	assert.Equal(t, "Alice", m.WinnerName)
}

func TestMatchTanksOrderedByPlace(t *testing.T) {
	db := openTestDB(t)
	id, err := db.RecordMatch(sampleMatch("room-1", time.Now()))
	require.NoError(t, err)

	tanks, err := db.MatchTanks(id)
	require.NoError(t, err)
	require.Len(t, tanks, 2)

	assert.Equal(t, "a", tanks[0].TankID)
	assert.Equal(t, 1, tanks[0].Place)
	assert.True(t, tanks[0].Survived)
	assert.Equal(t, 4, tanks[0].Shots)
	assert.Equal(t, "b", tanks[1].TankID)
	assert.False(t, tanks[1].Survived)
	assert.Equal(t, 110.0, tanks[1].DamageTaken)

	none, err := db.MatchTanks(id + 100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecentMatchesNewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.UnixMilli(1_700_000_000_000)
	for _, m := range []struct {
		room   string
		offset time.Duration
	}{
		{"old", 0},
		{"new", 2 * time.Hour},
		{"mid", time.Hour},
	} {
		_, err := db.RecordMatch(sampleMatch(m.room, base.Add(m.offset)))
		require.NoError(t, err)
	}

	matches, err := db.RecentMatches(2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "new", matches[0].RoomID)
	assert.Equal(t, "mid", matches[1].RoomID)

	// a non-positive limit falls back to the default page
	all, err := db.RecentMatches(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecentMatchesEmpty(t *testing.T) {
	db := openTestDB(t)
	matches, err := db.RecentMatches(5)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestOpenDBMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	_, err = db.RecordMatch(sampleMatch("room-1", time.Now()))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	matches, err := db.RecentMatches(0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
