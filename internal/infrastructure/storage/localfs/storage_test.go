package localfs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "scan_1.json", strings.NewReader(`{"mode":"text"}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := store.Open(ctx, "scan_1.json")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != `{"mode":"text"}` {
		t.Fatalf("unexpected payload %s", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left, got %d entries", len(entries))
	}

	if err := store.Delete(ctx, "scan_1.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "scan_1.json"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := store.Open(ctx, "scan_1.json"); err == nil {
		t.Fatalf("expected deleted payload to be gone")
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "../x.json", "a/b.json", ".hidden"} {
		if err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected key %q rejected", key)
		}
	}
}
