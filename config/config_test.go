package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}
	if cfg.Tunnel.EntryX >= cfg.Tunnel.ExitX {
		t.Errorf("default tunnel bounds inverted: entry %v, exit %v", cfg.Tunnel.EntryX, cfg.Tunnel.ExitX)
	}
	if cfg.Derived.DT32 != float32(cfg.Particles.DT) {
		t.Errorf("derived dt = %v, want %v", cfg.Derived.DT32, float32(cfg.Particles.DT))
	}
}

func writeUserConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRejectsTinySliceResolution(t *testing.T) {
	// resolution 0 would index an empty grid; resolution 1 has zero lattice
	// steps. Both must be rejected at load time, not at first rebuild.
	for _, res := range []string{"0", "1"} {
		path := writeUserConfig(t, "slice:\n  resolution: "+res+"\n")
		if _, err := Load(path); err == nil {
			t.Errorf("resolution %s accepted, want validation error", res)
		}
	}

	path := writeUserConfig(t, "slice:\n  resolution: 2\n")
	if _, err := Load(path); err != nil {
		t.Errorf("resolution 2 rejected: %v", err)
	}
}

func TestLoadRejectsInvalidNames(t *testing.T) {
	cases := []string{
		"flow:\n  obstacle: cube\n",
		"slice:\n  plane: xw\n",
		"slice:\n  field: vorticity\n",
	}
	for _, body := range cases {
		path := writeUserConfig(t, body)
		if _, err := Load(path); err == nil {
			t.Errorf("config %q accepted, want validation error", body)
		}
	}
}
