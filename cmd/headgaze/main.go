package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/headgaze/internal/app"
	"github.com/ayusman/headgaze/internal/capture"
	"github.com/ayusman/headgaze/internal/config"
	"github.com/ayusman/headgaze/internal/detector"
	"github.com/ayusman/headgaze/internal/log"
	"github.com/ayusman/headgaze/internal/overlay"
	"github.com/ayusman/headgaze/internal/pointer"
	"github.com/ayusman/headgaze/internal/server"
	"github.com/ayusman/headgaze/internal/store"
	"github.com/ayusman/headgaze/internal/tracking"
	"github.com/ayusman/headgaze/internal/tray"
)

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "headgaze: %v\n", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "headgaze: create data directory: %v\n", err)
		os.Exit(1)
	}
	log.Init(log.Options{Level: cfg.LogLevel, Dir: cfg.LogDir()})

	if err := run(cfg); err != nil {
		log.Fatal(log.Fields{"error": err}, "headgaze stopped")
	}
}

func run(cfg config.Config) error {
	profile, err := tracking.ProfileFor(tracking.Mode(cfg.Mode))
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	det, err := detector.NewMediaPipeDetector(profile.DetectorConfig())
	if err != nil {
		return fmt.Errorf("start detector: %w", err)
	}

	var display overlay.Display = overlay.Headless{}
	if cfg.Window {
		display = overlay.NewWindow(profile.Title)
	}

	a, err := app.New(app.Config{
		Profile:     profile,
		Camera:      capture.NewCameraWithOptions(capture.Options{DeviceID: cfg.CameraID, FPS: cfg.FPS}),
		Detector:    det,
		Pointer:     pointer.NewSystem(),
		Display:     display,
		Store:       st,
		SampleEvery: cfg.SampleEvery,
		FPS:         cfg.FPS,
		Stream:      cfg.Addr != "",
	})
	if err != nil {
		det.Close()
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info(log.Fields{
		"mode":   cfg.Mode,
		"camera": cfg.CameraID,
		"data":   cfg.DataDir,
		"tray":   cfg.Tray,
		"window": cfg.Window,
	}, "headgaze starting")

	if cfg.Addr != "" {
		srv := server.New(server.Config{
			StaticDir: findWebDir(cfg.DataDir),
			Store:     st,
			Status:    a,
			Frames:    a,
		})
		go func() {
			if err := srv.Run(ctx, cfg.Addr); err != nil {
				log.Error(log.Fields{"error": err, "addr": cfg.Addr}, "status server failed")
			}
		}()
	}

	if cfg.Tray {
		return runTray(ctx, cfg, a)
	}

	// The preview window needs the main goroutine.
	err = a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTray drives tracking in the background while the tray owns the main
// goroutine.
func runTray(ctx context.Context, cfg config.Config, a *app.App) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.WatchStatus(a.Status)
	if cfg.Addr != "" {
		t.OnOpen(func() { openBrowser(dashboardURL(cfg.Addr)) })
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
		case <-a.Done():
		}
	}()
	t.QuitWhen(done)

	t.Run()

	err := a.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn(log.Fields{"error": err, "url": url}, "could not open browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
