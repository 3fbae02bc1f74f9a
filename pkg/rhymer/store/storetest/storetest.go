// Package storetest holds behaviour checks shared by every store.Store backend.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/store"
)

// Sample returns a small snapshot covering rhymes, edges and line starts.
func Sample() index.Snapshot {
	return index.Snapshot{
		Version: index.SchemaVersion,
		Meta: index.Meta{
			Version:      index.SchemaVersion,
			BuiltAt:      time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
			CorpusDigest: "abc123",
			Lines:        2,
			Words:        6,
		},
		Rhymes: map[string][]string{
			"TAE1": {"bat", "sat"},
			"EY1":  {"day"},
		},
		Chain: map[string]index.ChainNode{
			"sat": {Prev: map[string]int64{"cat": 1, "bat": 2}},
			"cat": {Prev: map[string]int64{"the": 1}},
			"the": {Starts: 1, Prev: map[string]int64{}},
			"a":   {Starts: 3, Prev: map[string]int64{}},
		},
	}
}

// Run exercises open against the store.Store contract. open must return a fresh,
// empty store on each call.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("EmptyStore", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		ok, err := st.Exists(ctx)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if ok {
			t.Error("new store should be empty")
		}
		if _, err := st.Load(ctx); !errors.Is(err, internalerr.ErrNotFound) {
			t.Errorf("Load on empty store: got %v, want ErrNotFound", err)
		}
		if err := st.Remove(ctx); err != nil {
			t.Errorf("Remove on empty store: %v", err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		want := Sample()
		if err := st.Save(ctx, want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		ok, err := st.Exists(ctx)
		if err != nil || !ok {
			t.Fatalf("Exists after Save = %v, %v", ok, err)
		}

		got, err := st.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		Equal(t, want, got)

		if _, err := index.FromSnapshot(got, nil); err != nil {
			t.Errorf("FromSnapshot on loaded data: %v", err)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		if err := st.Save(ctx, Sample()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		second := index.Snapshot{
			Version: index.SchemaVersion,
			Meta:    index.Meta{Version: index.SchemaVersion, Lines: 1},
			Rhymes:  map[string][]string{"OW1": {"go"}},
			Chain:   map[string]index.ChainNode{"go": {Starts: 1, Prev: map[string]int64{}}},
		}
		if err := st.Save(ctx, second); err != nil {
			t.Fatalf("second Save: %v", err)
		}
		got, err := st.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		Equal(t, second, got)
	})

	t.Run("Remove", func(t *testing.T) {
		ctx := context.Background()
		st := open(t)
		defer st.Close()

		if err := st.Save(ctx, Sample()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := st.Remove(ctx); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		ok, err := st.Exists(ctx)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if ok {
			t.Error("store should be empty after Remove")
		}
	})
}

// Equal compares two snapshots, ignoring group order and empty Prev maps.
func Equal(t *testing.T, want, got index.Snapshot) {
	t.Helper()
	if got.Version != want.Version {
		t.Errorf("version = %d, want %d", got.Version, want.Version)
	}
	if !got.Meta.BuiltAt.Equal(want.Meta.BuiltAt) {
		t.Errorf("built_at = %v, want %v", got.Meta.BuiltAt, want.Meta.BuiltAt)
	}
	gm, wm := got.Meta, want.Meta
	gm.BuiltAt, wm.BuiltAt = time.Time{}, time.Time{}
	if gm != wm {
		t.Errorf("meta = %+v, want %+v", gm, wm)
	}
	if len(got.Rhymes) != len(want.Rhymes) {
		t.Errorf("rhyme keys = %d, want %d", len(got.Rhymes), len(want.Rhymes))
	}
	for key, words := range want.Rhymes {
		if !sameSet(words, got.Rhymes[key]) {
			t.Errorf("rhymes[%q] = %v, want %v", key, got.Rhymes[key], words)
		}
	}
	if len(got.Chain) != len(want.Chain) {
		t.Errorf("chain words = %d, want %d", len(got.Chain), len(want.Chain))
	}
	for word, n := range want.Chain {
		g, ok := got.Chain[word]
		if !ok {
			t.Errorf("chain word %q missing", word)
			continue
		}
		if g.Starts != n.Starts || !sameCounts(g.Prev, n.Prev) {
			t.Errorf("chain[%q] = %+v, want %+v", word, g, n)
		}
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, c := range seen {
		if c != 0 {
			return false
		}
	}
	return true
}

func sameCounts(a, b map[string]int64) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
