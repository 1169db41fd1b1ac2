package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// clearEnv unsets every HEADGAZE_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix) {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "HEADGAZE_MODE=head\nHEADGAZE_FPS=15\nHEADGAZE_CAMERA=2\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HEADGAZE_MODE")
		os.Unsetenv("HEADGAZE_FPS")
		os.Unsetenv("HEADGAZE_CAMERA")
	})

	// Environment beats the .env file, flags beat both.
	t.Setenv("HEADGAZE_FPS", "20")

	cfg, err := Load(envFile, []string{"-camera", "1", "-data", dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != "head" {
		t.Errorf("Mode = %q, want head from .env", cfg.Mode)
	}
	if cfg.FPS != 20 {
		t.Errorf("FPS = %d, want 20 from environment", cfg.FPS)
	}
	if cfg.CameraID != 1 {
		t.Errorf("CameraID = %d, want 1 from flags", cfg.CameraID)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env"), nil); err != nil {
		t.Errorf("Load() with missing .env error = %v", err)
	}
}

func TestLoad_TrayDisablesWindow(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name       string
		env        map[string]string
		args       []string
		wantWindow bool
	}{
		{name: "tray flag", args: []string{"-tray"}, wantWindow: false},
		{name: "tray env", env: map[string]string{"HEADGAZE_TRAY": "true"}, wantWindow: false},
		{name: "default", wantWindow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("", tt.args)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Window != tt.wantWindow {
				t.Errorf("Window = %v, want %v", cfg.Window, tt.wantWindow)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{name: "unknown mode", args: []string{"-mode", "blink"}, want: "Mode"},
		{name: "negative camera", args: []string{"-camera", "-1"}, want: "CameraID"},
		{name: "fps too high", args: []string{"-fps", "500"}, want: "FPS"},
		{name: "bad log level", args: []string{"-log-level", "trace"}, want: "LogLevel"},
		{name: "tray and window", args: []string{"-tray", "-window"}, want: "exclusive"},
		{name: "bad env int", env: map[string]string{"HEADGAZE_FPS": "fast"}, want: "HEADGAZE_FPS"},
		{name: "bad env bool", env: map[string]string{"HEADGAZE_TRAY": "maybe"}, want: "HEADGAZE_TRAY"},
		{name: "unknown flag", args: []string{"-nope"}, want: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_NormalizesCase(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", []string{"-mode", "HEAD", "-log-level", "Debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "head" || cfg.LogLevel != "debug" {
		t.Errorf("Mode/LogLevel = %q/%q, want head/debug", cfg.Mode, cfg.LogLevel)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got := cfg.DBPath(); got != filepath.Join("/data", "headgaze.db") {
		t.Errorf("DBPath() = %q", got)
	}
	if got := cfg.LogDir(); got != filepath.Join("/data", "logs") {
		t.Errorf("LogDir() = %q", got)
	}
}
