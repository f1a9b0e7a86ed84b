package cache

import (
	"path/filepath"
	"testing"

	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/token"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "matchcore.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyNormalization(t *testing.T) {
	base := Key([]byte("matches:\n  - name: m\n"))
	trailing := Key([]byte("matches:  \n  - name: m\n\n\n"))
	if base != trailing {
		t.Errorf("trailing whitespace changed key: %s vs %s", base, trailing)
	}
	changed := Key([]byte("matches:\n  - name: other\n"))
	if base == changed {
		t.Errorf("different content produced the same key %s", base)
	}
	if len(base) != 16 {
		t.Errorf("key length = %d, want 16", len(base))
	}
}

func TestLookupMiss(t *testing.T) {
	s := openTemp(t)
	_, ok, err := s.Lookup(Key([]byte("never stored")))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("Lookup reported a hit for a key that was never stored")
	}
}

func TestPutLookupRoundTrip(t *testing.T) {
	s := openTemp(t)
	source := []byte("matches:\n  - name: colors\n")
	entry := &Entry{
		Path: "colors.yaml",
		Diags: []*diagnostics.Diagnostic{
			diagnostics.NewWarning(diagnostics.ErrA001, token.Pos{Line: 2, Column: 5},
				"Color", "uncovered members of Color: Color.BLUE"),
			diagnostics.New(diagnostics.ErrA003, token.Pos{Line: 4, Column: 9}, "Widget"),
		},
	}
	key := Key(source)
	if err := s.Put(key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("Lookup missed an entry that was just stored")
	}
	if got.Path != "colors.yaml" {
		t.Errorf("Path = %q, want %q", got.Path, "colors.yaml")
	}
	if len(got.Diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(got.Diags))
	}
	for i, want := range entry.Diags {
		if got.Diags[i].Error() != want.Error() {
			t.Errorf("diagnostic %d = %q, want %q", i, got.Diags[i].Error(), want.Error())
		}
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTemp(t)
	key := Key([]byte("doc"))
	if err := s.Put(key, &Entry{Path: "a.yaml"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(key, &Entry{Path: "b.yaml"}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, ok, err := s.Lookup(key)
	if err != nil || !ok {
		t.Fatalf("Lookup after overwrite: ok=%v err=%v", ok, err)
	}
	if got.Path != "b.yaml" {
		t.Errorf("Path = %q, want the replacement %q", got.Path, "b.yaml")
	}
}
