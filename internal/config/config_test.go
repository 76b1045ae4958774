package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Defaults()
	cfg.Server.Port = 9191
	cfg.Router.Strategy = "keyword"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.Port != 9191 {
		t.Errorf("port lost: %d", loaded.Server.Port)
	}
	if loaded.Router.Strategy != "keyword" {
		t.Errorf("strategy lost: %q", loaded.Router.Strategy)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":7000}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("override lost: %d", cfg.Server.Port)
	}
	if cfg.General.MaxIterations != Defaults().General.MaxIterations {
		t.Errorf("unset fields should keep defaults, got %d", cfg.General.MaxIterations)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"router":{"strategy":"astrology"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad strategy")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CONCIERGE_TEST_KEY", "sk-123")

	got := ExpandEnvVars(`{"apiKey":"${CONCIERGE_TEST_KEY}"}`)
	if got != `{"apiKey":"sk-123"}` {
		t.Fatalf("env var not expanded: %s", got)
	}

	got = ExpandEnvVars(`${CONCIERGE_TEST_UNSET:-fallback}`)
	if got != "fallback" {
		t.Fatalf("default not applied: %s", got)
	}

	got = ExpandEnvVars(`${CONCIERGE_TEST_UNSET}`)
	if got != "${CONCIERGE_TEST_UNSET}" {
		t.Fatalf("unset without default should stay verbatim: %s", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Fatalf("tilde not expanded: %s", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path must pass through: %s", got)
	}
}
