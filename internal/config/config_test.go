package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func validViper() *viper.Viper {
	v := viper.New()
	v.Set("server.host", "127.0.0.1")
	v.Set("server.port", 8080)
	v.Set("database.path", "/tmp/brandkit.db")
	v.Set("remote.base_url", "http://localhost:3000/api")
	v.Set("remote.timeout", "3s")
	v.Set("autosave.quiet_period", "1500ms")
	v.Set("uploads.max_bytes", 1024)
	return v
}

func TestLoad(t *testing.T) {
	c, err := Load(validViper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Server.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8080")
	}
	if c.Remote.Timeout != 3*time.Second {
		t.Errorf("Remote.Timeout = %v, want 3s", c.Remote.Timeout)
	}
	if c.Autosave.QuietPeriod != 1500*time.Millisecond {
		t.Errorf("Autosave.QuietPeriod = %v, want 1.5s", c.Autosave.QuietPeriod)
	}
	if c.Uploads.MaxBytes != 1024 {
		t.Errorf("Uploads.MaxBytes = %d, want 1024", c.Uploads.MaxBytes)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{"bad port", "server.port", 70000, "server.port"},
		{"no database", "database.path", "", "database.path"},
		{"relative url", "remote.base_url", "/api", "remote.base_url"},
		{"both credentials", "remote.jwt_secret", "s3cret", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validViper()
			if tt.name == "both credentials" {
				v.Set("remote.token", "static")
			}
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BRANDKIT_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BRANDKIT_TEST_DOTENV", "")
	os.Unsetenv("BRANDKIT_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("BRANDKIT_TEST_DOTENV"); got != "from-file" {
		t.Errorf("BRANDKIT_TEST_DOTENV = %q, want %q", got, "from-file")
	}
}
