package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	return NewFS(t.TempDir())
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"entries":[]}`)
	if err := s.Write("state.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("state.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("cache/a/b.json", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("cache/a/b.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("del.json", []byte("bye")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("del.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.json"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestDeleteMissingKeepsNotExist(t *testing.T) {
	s := tempStore(t)
	err := s.Delete("never-written.json")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.Delete(p); err == nil {
			t.Errorf("expected error for delete of %q", p)
		}
	}
}

func TestAtomicOverwrite(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("atomic.json", []byte("original content")); err != nil {
		t.Fatal(err)
	}

	updated := []byte("updated content")
	if err := s.Write("atomic.json", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("atomic.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// The rename must not leave temp files behind.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".swiftfind-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}
