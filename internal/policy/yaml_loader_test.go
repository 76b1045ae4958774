package policy

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	spec := `name: wifi
description: WiFi troubleshooting
keywords: [wifi, router]
permitted:
  - network_status_display
gateway: wifi
`
	if err := os.WriteFile(filepath.Join(dir, "wifi.yaml"), []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadDir(dir, testLogger())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	got := specs[0]
	if got.Name != "wifi" || got.Gateway != "wifi" {
		t.Errorf("unexpected spec: %+v", got)
	}
	if len(got.Permitted) != 1 || got.Permitted[0] != "network_status_display" {
		t.Errorf("permitted list not loaded: %v", got.Permitted)
	}
}

func TestLoadDir_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"good.yaml":   "name: video\ndescription: streaming\n",
		"broken.yaml": "name: [unterminated\n",
		"notes.txt":   "not a spec",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	specs, err := LoadDir(dir, testLogger())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected only the good spec, got %d", len(specs))
	}
	if specs[0].Name != "video" {
		t.Errorf("expected video, got %q", specs[0].Name)
	}
}

func TestLoadDir_FilenameFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "support.yaml"), []byte("description: general support\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadDir(dir, testLogger())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "support" {
		t.Fatalf("expected name from filename, got %+v", specs)
	}
}

func TestLoadDir_MissingDir(t *testing.T) {
	specs, err := LoadDir(filepath.Join(t.TempDir(), "nope"), testLogger())
	if err != nil {
		t.Fatalf("missing dir should not be an error: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("expected no specs, got %d", len(specs))
	}
}

func TestWriteDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "domains")
	if err := WriteDefaults(dir); err != nil {
		t.Fatalf("write defaults: %v", err)
	}

	specs, err := LoadDir(dir, testLogger())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(specs) != len(DefaultSpecs()) {
		t.Fatalf("expected %d specs back, got %d", len(DefaultSpecs()), len(specs))
	}
}
