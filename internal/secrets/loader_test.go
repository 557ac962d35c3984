package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	got, err := Load(Source{Name: "gemini api key", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
}

func TestLoadFallsBackToValueThenEnv(t *testing.T) {
	t.Setenv("MATCHER_TEST_KEY", " from-env ")

	got, err := Load(Source{Value: " inline ", Env: []string{"MATCHER_TEST_KEY"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline" {
		t.Fatalf("expected inline value, got %q", got)
	}

	got, err = Load(Source{Env: []string{"MATCHER_UNSET_KEY", "MATCHER_TEST_KEY"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env value, got %q", got)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key", Env: []string{"MATCHER_UNSET_KEY"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadBrokenFileIsNotTreatedAsAbsent(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := Load(Source{Name: "gemini api key", File: missing})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Fatalf("missing file must not look like an absent secret: %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	if _, err := Load(Source{File: empty}); err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected empty file error, got %v", err)
	}
}
