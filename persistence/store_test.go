package persistence

import (
	"path/filepath"
	"testing"

	"github.com/nathoo/runesim/engine/save"
	"github.com/nathoo/runesim/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snapshotAt(player string, clock float64) *save.Snapshot {
	return &save.Snapshot{
		Version:   save.Version,
		Player:    player,
		Clock:     clock,
		Hitpoints: 40,
		Move:      types.MovementState{Area: "gnome_village", Pos: types.Coord{X: 2, Y: 8}},
		Agility:   types.AgilityState{XP: 1154, Level: 10},
	}
}

func TestStore_PutAndLatest(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(snapshotAt("alice", 10)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(snapshotAt("alice", 20)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	snap, err := s.Latest("alice")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snap == nil || snap.Clock != 20 {
		t.Errorf("latest snapshot = %+v, want clock 20", snap)
	}
	if snap.Move.Area != "gnome_village" || snap.Agility.Level != 10 {
		t.Errorf("payload did not survive the round trip: %+v", snap)
	}
}

func TestStore_LatestUnknownPlayer(t *testing.T) {
	s := openTestStore(t)
	snap, err := s.Latest("nobody")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snap != nil {
		t.Errorf("unknown player returned %+v", snap)
	}
}

func TestStore_History(t *testing.T) {
	s := openTestStore(t)
	for clock := 1.0; clock <= 5; clock++ {
		if err := s.Put(snapshotAt("alice", clock)); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.History("alice", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("history length = %d, want 3", len(recs))
	}
	// Newest first, sequential numbering.
	if recs[0].Seq != 5 || recs[0].Clock != 5 {
		t.Errorf("recs[0] = %+v, want seq 5", recs[0])
	}
	if recs[2].Seq != 3 {
		t.Errorf("recs[2].Seq = %d, want 3", recs[2].Seq)
	}

	all, err := s.History("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("unlimited history length = %d, want 5", len(all))
	}
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t)
	for clock := 1.0; clock <= 5; clock++ {
		if err := s.Put(snapshotAt("alice", clock)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Put(snapshotAt("bob", 99)); err != nil {
		t.Fatal(err)
	}

	if err := s.Prune("alice", 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	recs, err := s.History("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Seq != 5 || recs[1].Seq != 4 {
		t.Errorf("pruned history = %+v, want seqs 5 and 4", recs)
	}

	// Other players are untouched.
	snap, err := s.Latest("bob")
	if err != nil || snap == nil || snap.Clock != 99 {
		t.Errorf("bob's snapshot after prune: %+v, err %v", snap, err)
	}
}

func TestStore_Players(t *testing.T) {
	s := openTestStore(t)
	for _, p := range []string{"carol", "alice", "bob", "alice"} {
		if err := s.Put(snapshotAt(p, 1)); err != nil {
			t.Fatal(err)
		}
	}
	players, err := s.Players()
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(players) != len(want) {
		t.Fatalf("players = %v, want %v", players, want)
	}
	for i := range want {
		if players[i] != want[i] {
			t.Errorf("players[%d] = %q, want %q", i, players[i], want[i])
		}
	}
}

func TestStore_SeqPerPlayer(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(snapshotAt("alice", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(snapshotAt("alice", 2)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(snapshotAt("bob", 1)); err != nil {
		t.Fatal(err)
	}

	recs, err := s.History("bob", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Seq != 1 {
		t.Errorf("bob's history = %+v, want a fresh seq 1", recs)
	}
}
