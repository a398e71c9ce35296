package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if !c.HasPress("Prensa 102") || c.HasPress("Prensa 999") {
		t.Fatalf("press lookup broken: %+v", c.Presses)
	}
	if !c.HasPauseCause("falta_papel") || c.HasPauseCause("nope") {
		t.Fatalf("cause lookup broken: %+v", c.PauseCauses)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := []byte("presses:\n  - Prensa 9\npause_causes:\n  - code: otro\n    label: Otro\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.HasPress("Prensa 9") || len(c.PauseCauses) != 1 {
		t.Fatalf("unexpected catalog: %+v", c)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Presses) != 3 {
		t.Fatalf("expected default presses, got %+v", c.Presses)
	}
}

func TestLoadBrokenFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(":\n  bad"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
