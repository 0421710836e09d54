// Package daemonrun wires the proxy daemon together and runs it to
// completion: lock acquisition, logging, bus connection, IPC socket, and
// shutdown ordering.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"xnmp/internal/busadapter"
	"xnmp/internal/config"
	"xnmp/internal/hostproc"
	"xnmp/internal/ipc"
	"xnmp/internal/logging"
	"xnmp/internal/manifest"
	"xnmp/internal/proxy"
	"xnmp/internal/registry"
	"xnmp/internal/watch"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
	// Replace requests taking over an existing bus name owner.
	Replace bool
}

// Run starts the proxy daemon and serves until signaled, the bus name is
// lost, or a stop request arrives over IPC.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("create runtime directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another instance already holds %s", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	sessionID := uuid.NewString()
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("xnmp-%s.log", runID))

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	if err := writePIDFile(cfg.PIDPath()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(cfg.PIDPath())

	searchPaths := manifest.BuildSearchPaths(cfg.Hosts.ChromiumSearchPaths, cfg.Hosts.MozillaSearchPaths)
	logger.Info("manifest search paths",
		logging.String(logging.FieldEventType, "search_paths"),
		logging.Any("chromium", searchPaths.Chromium),
		logging.Any("mozilla", searchPaths.Mozilla))

	resolver := manifest.NewResolver(searchPaths, logger)
	launcher := hostproc.NewLauncher(logger)
	reg := registry.New(busadapter.ObjectPath, logger)
	tracker := watch.NewTracker(logger)
	coordinator := proxy.New(resolver, launcher, reg, tracker, logger)

	service, err := busadapter.Connect(coordinator, busadapter.Options{
		BusName: cfg.Bus.Name,
		Replace: opts.Replace || cfg.Bus.Replace,
	}, logger)
	if err != nil {
		logger.Error("bus connection failed", logging.Error(err))
		return err
	}
	coordinator.SetNotifier(service)

	ctrl := &controller{
		cfg:         cfg,
		coordinator: coordinator,
		service:     service,
		sessionID:   sessionID,
		logPath:     logPath,
		startedAt:   time.Now().UTC(),
		stop:        cancel,
		searchPaths: searchPaths,
	}
	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), ctrl, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	runErr := service.Run(signalCtx)

	// Fire every client token so in-flight requests abort and running
	// hosts get force-terminated by their supervisors. Hosts that have
	// not been reaped by process exit die with the daemon anyway; they
	// carry a parent-death signal.
	coordinator.Shutdown()

	logger.Info("proxy daemon shutting down",
		logging.String(logging.FieldEventType, "daemon_stopped"))
	return runErr
}

// controller adapts the running daemon to the IPC control surface.
type controller struct {
	cfg         *config.Config
	coordinator *proxy.Coordinator
	service     *busadapter.Service
	sessionID   string
	logPath     string
	startedAt   time.Time
	stop        context.CancelFunc
	searchPaths manifest.SearchPaths
}

func (c *controller) Status() ipc.StatusResponse {
	return ipc.StatusResponse{
		Running:        true,
		PID:            os.Getpid(),
		SessionID:      c.sessionID,
		BusName:        c.service.Name(),
		UniqueName:     c.service.UniqueName(),
		Version:        busadapter.Version,
		RunningHosts:   c.coordinator.RunningHosts(),
		TrackedClients: c.coordinator.Tracker().Len(),
		StartedAt:      c.startedAt.Format(time.RFC3339),
		LockPath:       c.cfg.LockPath(),
		LogPath:        c.logPath,
		ChromiumPaths:  c.searchPaths.Chromium,
		MozillaPaths:   c.searchPaths.Mozilla,
	}
}

func (c *controller) LogPath() string {
	return c.logPath
}

func (c *controller) RequestShutdown() {
	c.stop()
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
