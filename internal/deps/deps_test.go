package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wavecast/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Blank", Command: "   "}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Available {
		t.Fatal("expected blank command to be unavailable")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}

func TestRequirementsResolveAgainstConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	reqs := Requirements(cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	statuses := CheckBinaries(reqs)
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected %s to resolve, got detail %q", status.Name, status.Detail)
		}
	}
	if err := MissingRequired(statuses); err != nil {
		t.Fatalf("unexpected missing tools: %v", err)
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false, Detail: `binary "ffprobe" not found`},
		{Name: "Extra", Optional: true, Available: false, Detail: "binary not found"},
	}
	err := MissingRequired(statuses)
	if err == nil {
		t.Fatal("expected error for missing mandatory tool")
	}
	if !strings.Contains(err.Error(), "FFprobe") {
		t.Fatalf("expected error to name FFprobe, got %v", err)
	}
	if strings.Contains(err.Error(), "Extra") {
		t.Fatalf("optional tools must not be reported, got %v", err)
	}
}
