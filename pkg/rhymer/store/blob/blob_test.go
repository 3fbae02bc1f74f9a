package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/store"
	"github.com/cognicore/rhymer/pkg/rhymer/store/storetest"
)

func TestBlobContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := Open(filepath.Join(t.TempDir(), "nested", "rap_lyrics.ind"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return st
	})
}

func TestBlobIsCompressed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.ind")
	st, _ := Open(path)
	if err := st.Save(ctx, storetest.Sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	magic := []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	if len(data) < len(magic) || string(data[:len(magic)]) != string(magic) {
		t.Errorf("index file should start with the xz magic, got % x", data[:min(len(data), 6)])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestBlobCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.ind")
	if err := os.WriteFile(path, []byte("not xz"), 0644); err != nil {
		t.Fatal(err)
	}
	st, _ := Open(path)
	if _, err := st.Load(context.Background()); err == nil {
		t.Error("Load should fail on a corrupt file")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}
