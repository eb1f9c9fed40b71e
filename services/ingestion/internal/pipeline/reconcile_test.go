package pipeline

import (
	"testing"

	"github.com/example/cinewhisper/services/ingestion/internal/store"
)

func movie(id int64, title string) store.Movie {
	return store.Movie{TMDBID: id, Title: title}
}

func TestPartition_SplitsByExistence(t *testing.T) {
	batch := []store.Movie{movie(1, "a"), movie(2, "b"), movie(3, "c")}
	existing := map[int64]store.Movie{2: movie(2, "old")}

	toCreate, toUpdate := Partition(batch, existing)

	if len(toCreate) != 2 || toCreate[0].TMDBID != 1 || toCreate[1].TMDBID != 3 {
		t.Fatalf("toCreate = %v", toCreate)
	}
	if len(toUpdate) != 1 || toUpdate[0].TMDBID != 2 {
		t.Fatalf("toUpdate = %v", toUpdate)
	}
}

func TestPartition_Completeness(t *testing.T) {
	batch := []store.Movie{movie(1, "a"), movie(2, "b"), movie(3, "c"), movie(4, "d")}
	existing := map[int64]store.Movie{1: movie(1, "x"), 3: movie(3, "y")}

	toCreate, toUpdate := Partition(batch, existing)

	seen := map[int64]bool{}
	for _, m := range toCreate {
		seen[m.TMDBID] = true
	}
	for _, m := range toUpdate {
		if seen[m.TMDBID] {
			t.Fatalf("key %d in both buckets", m.TMDBID)
		}
		seen[m.TMDBID] = true
	}
	for _, m := range batch {
		if !seen[m.TMDBID] {
			t.Fatalf("key %d missing from both buckets", m.TMDBID)
		}
	}
	if len(toCreate)+len(toUpdate) != len(batch) {
		t.Fatalf("buckets sum to %d, want %d", len(toCreate)+len(toUpdate), len(batch))
	}
}

func TestPartition_DuplicateKeyLastWins(t *testing.T) {
	batch := []store.Movie{movie(7, "first"), movie(8, "other"), movie(7, "second")}

	toCreate, toUpdate := Partition(batch, map[int64]store.Movie{})
	if len(toUpdate) != 0 {
		t.Fatalf("toUpdate = %v", toUpdate)
	}
	if len(toCreate) != 2 {
		t.Fatalf("toCreate has %d entries, want 2", len(toCreate))
	}
	if toCreate[0].TMDBID != 7 || toCreate[0].Title != "second" {
		t.Fatalf("duplicate key should keep later record, got %+v", toCreate[0])
	}

	// same rule on the update side
	_, toUpdate = Partition(batch, map[int64]store.Movie{7: movie(7, "stored")})
	if len(toUpdate) != 1 || toUpdate[0].Title != "second" {
		t.Fatalf("toUpdate = %v", toUpdate)
	}
}

func TestPartition_EmptyBatch(t *testing.T) {
	toCreate, toUpdate := Partition(nil, map[int64]store.Movie{1: movie(1, "a")})
	if len(toCreate) != 0 || len(toUpdate) != 0 {
		t.Fatalf("empty batch produced %v / %v", toCreate, toUpdate)
	}
}

func TestKeysOf_DistinctFirstSeen(t *testing.T) {
	batch := []store.Movie{movie(3, ""), movie(1, ""), movie(3, ""), movie(2, "")}
	keys := keysOf(batch)
	want := []int64{3, 1, 2}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}
