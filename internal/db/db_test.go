package db

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdem/pkg/server"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "holdem.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestUserRoundTrip(t *testing.T) {
	d := openTestDB(t)

	_, err := d.GetUsername("u1")
	require.Error(t, err)

	require.NoError(t, d.UpsertUser("u1", "alice", "pic.png"))
	name, err := d.GetUsername("u1")
	require.NoError(t, err)
	require.Equal(t, "alice", name)
	pic, err := d.GetProfilePicture("u1")
	require.NoError(t, err)
	require.Equal(t, "pic.png", pic)

	// Upsert replaces, never duplicates.
	require.NoError(t, d.UpsertUser("u1", "alicia", ""))
	name, err = d.GetUsername("u1")
	require.NoError(t, err)
	require.Equal(t, "alicia", name)
}

func TestLobbyStatusUpsert(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.SetLobbyStatus("L1", server.LobbyStatusInProgress))
	require.NoError(t, d.SetLobbyStatus("L1", server.LobbyStatusCompleted))

	var status string
	err := d.QueryRow("SELECT status FROM lobbies WHERE id = ?", "L1").Scan(&status)
	require.NoError(t, err)
	require.Equal(t, server.LobbyStatusCompleted, status)
}

func TestRecordHandResult(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.SetLobbyStatus("L1", server.LobbyStatusInProgress))
	result := &server.HandResult{
		HandNum:   3,
		Summaries: []string{"alice wins 40 with Pair"},
		Players: []server.PlayerResult{
			{UserID: "u1", Name: "alice", Chips: 220, WonRound: true},
			{UserID: "u2", Name: "bob", Chips: 180},
		},
	}
	require.NoError(t, d.RecordHandResult("L1", result))

	var handNum int
	var summaries, players string
	err := d.QueryRow(`
		SELECT hand_num, summaries, players FROM hand_results WHERE lobby_id = ?
	`, "L1").Scan(&handNum, &summaries, &players)
	require.NoError(t, err)
	require.Equal(t, 3, handNum)
	require.Contains(t, summaries, "alice wins 40")
	require.Contains(t, players, `"u2"`)
}
