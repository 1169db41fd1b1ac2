// Package config loads the operational settings of headgaze.
//
// Settings come from, lowest to highest precedence: built-in defaults, a .env
// file, HEADGAZE_* environment variables and command-line flags. Tracking
// tunables are not configurable; they live in tracking profiles.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "HEADGAZE_"

// Config holds the operational settings.
type Config struct {
	Mode     string `validate:"oneof=gaze head"`
	CameraID int    `validate:"gte=0"`
	// Addr is the HTTP listen address. Empty disables the status server.
	Addr     string `validate:"omitempty,hostname_port"`
	DataDir  string `validate:"required"`
	Tray     bool
	Window   bool
	LogLevel string `validate:"oneof=debug info warn error"`
	FPS      int    `validate:"gte=1,lte=120"`
	// SampleEvery records one cursor sample every N frames; 0 disables the trace.
	SampleEvery int `validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:        "gaze",
		CameraID:    0,
		Addr:        "127.0.0.1:8080",
		DataDir:     defaultDataDir(),
		Window:      true,
		LogLevel:    "info",
		FPS:         30,
		SampleEvery: 5,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".headgaze"
	}
	return filepath.Join(home, ".headgaze")
}

var validate = validator.New()

// Validate checks every field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Tray && c.Window {
		return errors.New("invalid config: tray and window modes are exclusive")
	}
	return nil
}

// DBPath returns the session database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "headgaze.db")
}

// LogDir returns the log file directory.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Load builds a Config from defaults, envFile, the environment and args.
// A missing envFile is not an error.
func Load(envFile string, args []string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.parseFlags(args); err != nil {
		return cfg, err
	}

	cfg.Mode = strings.ToLower(cfg.Mode)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"MODE":      &c.Mode,
		"ADDR":      &c.Addr,
		"DATA_DIR":  &c.DataDir,
		"LOG_LEVEL": &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CAMERA":       &c.CameraID,
		"FPS":          &c.FPS,
		"SAMPLE_EVERY": &c.SampleEvery,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"TRAY":   &c.Tray,
		"WINDOW": &c.Window,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	// Tray mode has no preview window unless asked for explicitly.
	if c.Tray {
		if _, ok := lookup(EnvPrefix + "WINDOW"); !ok {
			c.Window = false
		}
	}
	return nil
}

func (c *Config) parseFlags(args []string) error {
	fset := flag.NewFlagSet("headgaze", flag.ContinueOnError)
	fset.StringVar(&c.Mode, "mode", c.Mode, "tracking mode: gaze or head")
	fset.IntVar(&c.CameraID, "camera", c.CameraID, "camera device ID")
	fset.StringVar(&c.Addr, "addr", c.Addr, "status server address (empty to disable)")
	fset.StringVar(&c.DataDir, "data", c.DataDir, "data directory")
	fset.BoolVar(&c.Tray, "tray", c.Tray, "run from the system tray")
	fset.BoolVar(&c.Window, "window", c.Window, "show the preview window")
	fset.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fset.IntVar(&c.FPS, "fps", c.FPS, "camera frame rate")
	fset.IntVar(&c.SampleEvery, "sample-every", c.SampleEvery, "record one cursor sample every N frames (0 disables)")

	if err := fset.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["tray"] && c.Tray && !set["window"] {
		c.Window = false
	}
	return nil
}
