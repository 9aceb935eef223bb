package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDB(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brandkit.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	if _, err := New("/nonexistent/path/to/db"); err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestWALModeEnabled(t *testing.T) {
	s := tempDB(t)
	var mode string
	if err := s.DB().QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestTx(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	if _, err := s.DB().ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	if err := s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
		return err
	}); err != nil {
		t.Fatalf("Tx commit: %v", err)
	}

	sentinel := errors.New("abort")
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (2)"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Tx rollback error = %v, want sentinel", err)
	}

	var count int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestMigrate(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	calls := 0
	migrations := []Migration{
		{Version: 1, Description: "create", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("CREATE TABLE m (id INTEGER)")
			return err
		}},
		{Version: 2, Description: "add column", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("ALTER TABLE m ADD COLUMN name TEXT")
			return err
		}},
	}

	for i := 0; i < 2; i++ {
		if err := s.Migrate(ctx, "test", migrations); err != nil {
			t.Fatalf("Migrate run %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Errorf("migrations ran %d times, want 2", calls)
	}
	if _, err := s.DB().ExecContext(ctx, "INSERT INTO m (id, name) VALUES (1, 'x')"); err != nil {
		t.Errorf("insert after migration: %v", err)
	}
}

func TestMigrate_FailureKeepsEarlierSteps(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	migrations := []Migration{
		{Version: 1, Description: "ok", Up: func(tx *sql.Tx) error {
			_, err := tx.Exec("CREATE TABLE ok_table (id INTEGER)")
			return err
		}},
		{Version: 2, Description: "bad", Up: func(tx *sql.Tx) error {
			_, err := tx.Exec("INVALID SQL")
			return err
		}},
	}
	if err := s.Migrate(ctx, "partial", migrations); err == nil {
		t.Fatal("expected error from bad migration")
	}

	var count int
	if err := s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM _migrations WHERE component = 'partial'").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("recorded migrations = %d, want 1", count)
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		steps   []string
		wantErr error
	}{
		{"first run", []string{"0.4.0"}, nil},
		{"same version", []string{"0.4.0", "0.4.0"}, nil},
		{"upgrade", []string{"0.4.0", "0.5.0"}, nil},
		{"patch upgrade", []string{"0.4.0", "v0.4.1"}, nil},
		{"downgrade rejected", []string{"0.5.0", "0.4.0"}, ErrNewerSchema},
		{"dev passes", []string{"dev", "0.5.0", "dev"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tempDB(t)
			ctx := context.Background()
			var err error
			for _, v := range tc.steps {
				if err = s.CheckVersion(ctx, v); err != nil {
					break
				}
			}
			if tc.wantErr == nil && err != nil {
				t.Fatalf("CheckVersion: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("CheckVersion error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckVersion_RecordsUpgrade(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	_ = s.CheckVersion(ctx, "0.4.0")
	_ = s.CheckVersion(ctx, "0.5.0")

	var stored string
	if err := s.DB().QueryRowContext(ctx, "SELECT app_version FROM _schema_meta WHERE id = 1").Scan(&stored); err != nil {
		t.Fatalf("query: %v", err)
	}
	if stored != "0.5.0" {
		t.Errorf("stored version = %q, want 0.5.0", stored)
	}
}
