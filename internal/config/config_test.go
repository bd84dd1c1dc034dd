package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{
		DefaultProfile: "work",
		API: APIConfig{
			BaseURL: "https://api.example.org",
			Token:   "tok",
			UserID:  "u1",
		},
		Realtime: RealtimeConfig{URL: "wss://rt.example.org/feed"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want work", loaded.DefaultProfile)
	}
	if loaded.API.BaseURL != "https://api.example.org" || loaded.API.UserID != "u1" {
		t.Errorf("API = %+v", loaded.API)
	}
	if loaded.Realtime.URL != "wss://rt.example.org/feed" {
		t.Errorf("Realtime.URL = %q", loaded.Realtime.URL)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
