package daemon

import (
	"path/filepath"
	"testing"

	"github.com/carebridgehq/chatsync/internal/config"
	"go.uber.org/fx"
)

// TestFxGraphResolves verifies the fx dependency graph is complete: every
// provider's inputs are produced by some other provider or by Supply.
func TestFxGraphResolves(t *testing.T) {
	if err := fx.ValidateApp(Module(Params{Profile: "fxtest"})); err != nil {
		t.Fatalf("fx graph does not resolve: %v", err)
	}
}

func TestProvideConfigUsesOverridePath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	want := &config.Config{
		DefaultProfile: "work",
		API: config.APIConfig{
			BaseURL: "https://api.example.org",
			Token:   "tok",
			UserID:  "u1",
		},
		Realtime: config.RealtimeConfig{URL: "wss://rt.example.org/feed"},
	}
	if err := config.Save(path, want); err != nil {
		t.Fatal(err)
	}

	got, err := provideConfig(Params{Profile: "work", ConfigPath: path})
	if err != nil {
		t.Fatalf("provideConfig() error = %v", err)
	}
	if got.API.UserID != "u1" || got.Realtime.URL != want.Realtime.URL {
		t.Errorf("config = %+v", got)
	}
}

func TestProvideConfigMissingFile(t *testing.T) {
	_, err := provideConfig(Params{Profile: "x", ConfigPath: "/nonexistent/config.toml"})
	if err == nil {
		t.Error("expected error for missing config")
	}
}
