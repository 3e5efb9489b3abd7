package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/pinchball/internal/app"
	"github.com/ayusman/pinchball/internal/capture"
	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/detector"
	"github.com/ayusman/pinchball/internal/logging"
	"github.com/ayusman/pinchball/internal/render"
	"github.com/ayusman/pinchball/internal/server"
	"github.com/ayusman/pinchball/internal/store"
	"github.com/ayusman/pinchball/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	ui := flag.String("ui", "", "user interface: window, tray or headless")
	addr := flag.String("addr", "", "HTTP listen address, \"off\" disables the server")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *ui, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pinchball: %v\n", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pinchball: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("pinchball failed", zap.Error(err))
		os.Exit(1)
	}
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(path, ui, addr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if ui != "" {
		cfg.UI = ui
	}
	switch addr {
	case "":
	case "off":
		cfg.Server.Addr = ""
	default:
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Format == "console" {
		return logging.NewDevelopment(cfg.Level)
	}
	return logging.New(cfg.Level)
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting pinchball",
		zap.String("ui", cfg.UI),
		zap.Int("width", cfg.Display.Width),
		zap.Int("height", cfg.Display.Height),
		zap.Int("fps", cfg.Display.FPS),
	)

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("store opened", zap.String("path", st.Path()))

	appCfg := app.Config{
		Settings: cfg,
		Detector: newDetector(cfg, log),
		Store:    st,
		Logger:   log,
	}
	if cfg.Camera.Enabled {
		appCfg.Camera = capture.NewCamera(capture.Config{
			DeviceID: cfg.Camera.DeviceID,
		}, log)
	}
	if cfg.UI == config.UIWindow {
		appCfg.Display = render.NewWindow("Pinchball")
	}

	loop, err := app.New(appCfg)
	if err != nil {
		appCfg.Detector.Close()
		return fmt.Errorf("build app: %w", err)
	}
	defer loop.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.Addr != "" {
		staticDir := cfg.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		if staticDir != "" {
			log.Info("serving static files", zap.String("dir", staticDir))
		}

		srv := server.New(server.Config{
			StaticDir:  staticDir,
			Store:      st,
			Hub:        loop.Hub(),
			Controller: loop,
			Logger:     log,
		})
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.Server.Addr)
		})
	}

	// gocv windows and the system tray both need the main thread, so
	// whichever UI is active runs here and the other work runs in g.
	switch cfg.UI {
	case config.UITray:
		t := tray.New(loop, loop.Hub(), log)
		t.OnQuit(cancel)
		if url := viewerURL(cfg.Server.Addr); url != "" {
			t.OnOpen(func() { openBrowser(url, log) })
		}

		g.Go(func() error {
			defer t.Quit()
			defer cancel()
			return loop.Run(gctx)
		})
		t.Run()
		cancel()

	default:
		err := loop.Run(gctx)
		cancel()
		if err != nil {
			return err
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("pinchball stopped", zap.Int64("ticks", loop.Ticks()))
	return nil
}

// openStore opens path, or ~/.pinchball/pinchball.db when path is empty.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}

		dbDir := filepath.Join(homeDir, ".pinchball")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path = filepath.Join(dbDir, "pinchball.db")
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return st, nil
}

// newDetector returns the configured detector. MediaPipe falls back to an
// empty mock when its service script cannot be found, so the ball still
// runs without hand input.
func newDetector(cfg *config.Config, log *zap.Logger) detector.Detector {
	if cfg.Detector.Kind == config.DetectorMock {
		return detector.NewMockDetector()
	}

	d, err := detector.NewMediaPipeDetector(detectorConfig(cfg.Detector), log)
	if err != nil {
		log.Warn("mediapipe unavailable, running without hand input", zap.Error(err))
		return detector.NewMockDetector()
	}
	return d
}

func detectorConfig(cfg config.DetectorConfig) detector.Config {
	dcfg := detector.DefaultConfig()
	dcfg.MinConfidence = cfg.MinConfidence
	dcfg.MinTrackingConf = cfg.MinTrackingConfidence
	dcfg.ScriptPath = cfg.ScriptPath
	return dcfg
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.pinchball/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
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

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".pinchball", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// viewerURL turns a listen address into a local URL for the browser.
func viewerURL(addr string) string {
	if addr == "" {
		return ""
	}
	if addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string, log *zap.Logger) {
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
		log.Warn("failed to open browser", zap.String("url", url), zap.Error(err))
	}
}
