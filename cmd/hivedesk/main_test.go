package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunMove_RejectsBadArguments(t *testing.T) {
	if code := runMove([]string{"wallet"}); code != 2 {
		t.Fatalf("expected exit 2 for missing coordinates, got %d", code)
	}
	if code := runMove([]string{"wallet", "ten", "5"}); code != 2 {
		t.Fatalf("expected exit 2 for a non-numeric x, got %d", code)
	}
	if code := runMove([]string{"wallet", "10", "five"}); code != 2 {
		t.Fatalf("expected exit 2 for a non-numeric y, got %d", code)
	}
}

func TestRunResize_RejectsBadArguments(t *testing.T) {
	if code := runResize([]string{"wallet", "40"}); code != 2 {
		t.Fatalf("expected exit 2 for missing height, got %d", code)
	}
	if code := runResize([]string{"wallet", "wide", "15"}); code != 2 {
		t.Fatalf("expected exit 2 for a non-numeric width, got %d", code)
	}
}

func TestRunStatus_RejectsExtraArguments(t *testing.T) {
	if code := runStatus([]string{"extra"}); code != 2 {
		t.Fatalf("expected exit 2 for extra arguments, got %d", code)
	}
}

func TestRunConfig_PathAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("HIVEDESK_CONFIG", path)

	if code := runConfig([]string{"path"}); code != 0 {
		t.Fatalf("expected exit 0 for config path, got %d", code)
	}

	// A missing file validates as the defaults.
	if code := runConfig([]string{"validate"}); code != 0 {
		t.Fatalf("expected exit 0 for a missing config, got %d", code)
	}

	if err := os.WriteFile(path, []byte("theme: neon\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if code := runConfig([]string{"validate"}); code != 1 {
		t.Fatalf("expected exit 1 for an invalid theme, got %d", code)
	}

	if code := runConfig([]string{"bogus"}); code != 2 {
		t.Fatalf("expected exit 2 for an unknown subcommand, got %d", code)
	}
}
