// Package hostproc spawns native messaging host executables with the pipe
// plumbing the browsers' native messaging contracts expect.
package hostproc

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"xnmp/internal/logging"
	"xnmp/internal/manifest"
)

// Launcher starts host subprocesses with stdio pipes.
type Launcher struct {
	logger *slog.Logger
}

// NewLauncher constructs a launcher.
func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{logger: logging.NewComponentLogger(logger, "hostproc")}
}

// Launch spawns the manifest's executable. The proxy keeps the write end
// of the host's stdin and the read ends of its stdout/stderr; the host
// holds the opposite ends. On any error all descriptors are closed before
// returning.
//
// argv follows the vendor contracts: chromium passes only the extension
// identifier; mozilla inserts the manifest's own file path before it.
func (l *Launcher) Launch(m *manifest.Manifest, extraArg string, mode manifest.Mode) (*Host, error) {
	argv := Argv(m, extraArg, mode)

	stdinRead, stdinWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutRead, stdoutWrite, err := os.Pipe()
	if err != nil {
		closeAll(stdinRead, stdinWrite)
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderrRead, stderrWrite, err := os.Pipe()
	if err != nil {
		closeAll(stdinRead, stdinWrite, stdoutRead, stdoutWrite)
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdinRead
	cmd.Stdout = stdoutWrite
	cmd.Stderr = stderrWrite
	// Hosts must not outlive the proxy even if force-termination is skipped
	// by a crash.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGKILL}

	if err := cmd.Start(); err != nil {
		closeAll(stdinRead, stdinWrite, stdoutRead, stdoutWrite, stderrRead, stderrWrite)
		return nil, fmt.Errorf("spawn native messaging host %s: %w", argv[0], err)
	}

	// Child ends are duplicated into the subprocess; drop ours.
	closeAll(stdinRead, stdoutWrite, stderrWrite)

	l.logger.Debug("spawned native messaging host",
		logging.String("binary", argv[0]),
		logging.Int("pid", cmd.Process.Pid),
		logging.String("mode", mode.String()))

	return &Host{
		cmd:    cmd,
		stdin:  stdinWrite,
		stdout: stdoutRead,
		stderr: stderrRead,
	}, nil
}

// Argv builds the host command line for a mode.
func Argv(m *manifest.Manifest, extraArg string, mode manifest.Mode) []string {
	if mode == manifest.ModeMozilla {
		return []string{m.Path, m.FilePath, extraArg}
	}
	return []string{m.Path, extraArg}
}

func closeAll(files ...*os.File) {
	for _, file := range files {
		if file != nil {
			_ = file.Close()
		}
	}
}
