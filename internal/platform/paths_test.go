package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsForLinuxDefaults(t *testing.T) {
	paths, err := PathsFor("linux", map[string]string{}, "/home/u/.config", "/home/u/.local/share", "sikte")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join("/home/u/.config", "sikte", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join("/home/u/.local/share", "sikte") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
	if paths.LogPath != filepath.Join(paths.DataDir, "sikte.json") {
		t.Fatalf("unexpected log path %q", paths.LogPath)
	}
	if paths.DBPath != filepath.Join(paths.DataDir, "sikte.db") {
		t.Fatalf("unexpected db path %q", paths.DBPath)
	}
}

func TestPathsForLinuxHonorsXDGOverrides(t *testing.T) {
	env := map[string]string{
		"XDG_CONFIG_HOME": "/custom/config",
		"XDG_DATA_HOME":   "/custom/data",
	}
	paths, err := PathsFor("linux", env, "/home/u/.config", "/home/u/.local/share", "sikte")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join("/custom/config", "sikte", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join("/custom/data", "sikte") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForWindowsHonorsAppData(t *testing.T) {
	env := map[string]string{
		"APPDATA":      `C:\Users\u\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\u\AppData\Local`,
	}
	paths, err := PathsFor("windows", env, `C:\fallback\config`, `C:\fallback\data`, "sikte")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if paths.ConfigPath != filepath.Join(`C:\Users\u\AppData\Roaming`, "sikte", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.ConfigPath)
	}
	if paths.DataDir != filepath.Join(`C:\Users\u\AppData\Local`, "sikte") {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForDarwinUsesUserDirs(t *testing.T) {
	paths, err := PathsFor("darwin", map[string]string{}, "/Users/u/Library/Application Support", "/Users/u/Library/Application Support", "sikte")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	want := filepath.Join("/Users/u/Library/Application Support", "sikte")
	if paths.DataDir != want {
		t.Fatalf("unexpected data dir %q", paths.DataDir)
	}
}

func TestPathsForValidation(t *testing.T) {
	if _, err := PathsFor("linux", nil, "", "/data", "sikte"); err == nil {
		t.Fatal("expected error for empty config dir")
	}
	if _, err := PathsFor("linux", nil, "/config", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestDefaultPathsWithOptionsDevSuffix(t *testing.T) {
	paths, err := DefaultPathsWithOptions(Options{AppName: "sikte", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(paths.DataDir) != "sikte-dev" {
		t.Fatalf("expected dev-suffixed data dir, got %q", paths.DataDir)
	}
}
