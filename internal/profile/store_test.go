package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStorePathFor(t *testing.T) {
	var s Store
	got := s.PathFor("linkedin", "jean_dupont", "/data")
	want := filepath.Join("/data", "linkedin__jean_dupont.json")
	if got != want {
		t.Errorf("PathFor = %q, want %q", got, want)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	var s Store
	path := filepath.Join(t.TempDir(), "nested", "dir", "linkedin__jean_dupont.json")

	in := Record{"full_name": "Jean Dupont", "follower_count": float64(12)}
	out, err := s.Save(in, path)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out["full_name"] != "Jean Dupont" {
		t.Errorf("Save should return its input, got %v", out)
	}

	got, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["full_name"] != "Jean Dupont" || got["follower_count"] != float64(12) {
		t.Errorf("Load = %v, want %v", got, in)
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	var s Store
	path := filepath.Join(t.TempDir(), "p.json")

	if _, err := s.Save(Record{"a": "1", "b": "2"}, path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(Record{"a": "3"}, path); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["a"] != "3" {
		t.Errorf("Load after overwrite = %v", got)
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	var s Store
	_, err := s.Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing = %v, want ErrNotFound", err)
	}
}

func TestStoreLoadInvalidJSON(t *testing.T) {
	var s Store
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(path)
	if err == nil {
		t.Fatal("Load should fail on invalid JSON")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("parse failure must not be reported as ErrNotFound")
	}
}
