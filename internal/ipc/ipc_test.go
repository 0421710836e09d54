package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xnmp/internal/ipc"
	"xnmp/internal/logging"
)

type fakeDaemon struct {
	status    ipc.StatusResponse
	logPath   string
	shutdowns chan struct{}
}

func (d *fakeDaemon) Status() ipc.StatusResponse { return d.status }
func (d *fakeDaemon) LogPath() string            { return d.logPath }
func (d *fakeDaemon) RequestShutdown()           { d.shutdowns <- struct{}{} }

func TestIPCServerClient(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(logPath, []byte("first line\nsecond line\n"), 0o644); err != nil {
		t.Fatalf("write log fixture: %v", err)
	}

	daemon := &fakeDaemon{
		logPath: logPath,
		status: ipc.StatusResponse{
			Running:      true,
			PID:          4242,
			BusName:      "org.freedesktop.NativeMessagingProxy",
			UniqueName:   ":1.99",
			Version:      1,
			RunningHosts: 3,
		},
		shutdowns: make(chan struct{}, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(t.TempDir(), "xnmp.sock")
	srv, err := ipc.NewServer(ctx, socket, daemon, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running || status.PID != 4242 || status.RunningHosts != 3 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.UniqueName != ":1.99" {
		t.Fatalf("unique name = %q", status.UniqueName)
	}

	tail, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("LogTail RPC failed: %v", err)
	}
	if len(tail.Lines) != 2 || tail.Lines[1] != "second line" {
		t.Fatalf("log tail = %v", tail.Lines)
	}

	resp, err := client.Shutdown()
	if err != nil {
		t.Fatalf("Shutdown RPC failed: %v", err)
	}
	if !resp.Stopping {
		t.Fatal("expected Stopping=true")
	}
	select {
	case <-daemon.shutdowns:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never saw the shutdown request")
	}
}

func TestNewServerRequiresDaemon(t *testing.T) {
	if _, err := ipc.NewServer(context.Background(), filepath.Join(t.TempDir(), "s.sock"), nil, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil daemon")
	}
}
