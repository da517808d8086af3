package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Checksum != "xxhash" {
		t.Fatalf("Checksum = %q, want %q", cfg.Checksum, "xxhash")
	}
	if cfg.Workers != 0 {
		t.Fatalf("Workers = %d, want 0 (auto)", cfg.Workers)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("Log = %+v, want info/text", cfg.Log)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
workers = 6
max_mem = "64MiB"
checksum = "xxh3"

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 6 {
		t.Fatalf("Workers = %d, want 6", cfg.Workers)
	}
	if cfg.Checksum != "xxh3" {
		t.Fatalf("Checksum = %q, want %q", cfg.Checksum, "xxh3")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("Log = %+v, want debug/json", cfg.Log)
	}

	mem, err := cfg.MaxMemBytes()
	if err != nil {
		t.Fatalf("MaxMemBytes: %v", err)
	}
	if mem != 64<<20 {
		t.Fatalf("MaxMemBytes = %d, want %d", mem, 64<<20)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 2 {
		t.Fatalf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Checksum != "xxhash" {
		t.Fatalf("Checksum = %q, want default %q", cfg.Checksum, "xxhash")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadDefaultMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Checksum != "xxhash" {
		t.Fatalf("Checksum = %q, want default", cfg.Checksum)
	}
}

func TestMaxMemBytes(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"4096", 4096, false},
		{"1KiB", 1024, false},
		{"1MB", 1000 * 1000, false},
		{"lots", 0, true},
	}
	for _, tc := range cases {
		cfg := Config{MaxMem: tc.in}
		got, err := cfg.MaxMemBytes()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("MaxMemBytes(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("MaxMemBytes(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("MaxMemBytes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
