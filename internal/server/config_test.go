package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := v.GetInt("server.port"); got != 8080 {
		t.Errorf("server.port = %d, want 8080", got)
	}
	if got := v.GetDuration("autosave.quiet_period"); got != 1500*time.Millisecond {
		t.Errorf("autosave.quiet_period = %v, want 1.5s", got)
	}
	if got := v.GetString("database.path"); got != "./data/brandkit.db" {
		t.Errorf("database.path = %q", got)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brandkit.yaml")
	yaml := "server:\n  port: 9999\nremote:\n  base_url: https://config.example.com/api\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BRANDKIT_REMOTE_TIMEOUT", "2s")

	v, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := v.GetInt("server.port"); got != 9999 {
		t.Errorf("server.port = %d, want 9999", got)
	}
	if got := v.GetString("remote.base_url"); got != "https://config.example.com/api" {
		t.Errorf("remote.base_url = %q", got)
	}
	if got := v.GetDuration("remote.timeout"); got != 2*time.Second {
		t.Errorf("remote.timeout = %v, want 2s (env override)", got)
	}
}
