package hostproc_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"xnmp/internal/hostproc"
	"xnmp/internal/logging"
	"xnmp/internal/manifest"
	"xnmp/internal/testsupport"
)

func TestArgv(t *testing.T) {
	m := &manifest.Manifest{
		Path:     "/opt/host/bin/host",
		FilePath: "/etc/hosts.d/com.example.host.json",
	}

	mozilla := hostproc.Argv(m, "extension@example.org", manifest.ModeMozilla)
	wantMozilla := []string{"/opt/host/bin/host", "/etc/hosts.d/com.example.host.json", "extension@example.org"}
	if len(mozilla) != len(wantMozilla) {
		t.Fatalf("mozilla argv = %v", mozilla)
	}
	for i := range wantMozilla {
		if mozilla[i] != wantMozilla[i] {
			t.Fatalf("mozilla argv = %v, want %v", mozilla, wantMozilla)
		}
	}

	chromium := hostproc.Argv(m, "chrome-extension://abc/", manifest.ModeChromium)
	if len(chromium) != 2 || chromium[0] != m.Path || chromium[1] != "chrome-extension://abc/" {
		t.Fatalf("chromium argv = %v", chromium)
	}
}

func TestLaunchEchoesThroughPipes(t *testing.T) {
	exe := testsupport.StubHost(t, `cat`)
	dir := testsupport.NewManifestDir(t)
	manifestPath := dir.WriteValidManifest("com.example.echo", exe)

	m := &manifest.Manifest{
		Name:     "com.example.echo",
		Type:     "stdio",
		Path:     exe,
		FilePath: manifestPath,
	}

	launcher := hostproc.NewLauncher(logging.NewNop())
	host, err := launcher.Launch(m, "extension@example.org", manifest.ModeChromium)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	stdin, stdout, stderr := host.TakeFiles()
	if stdin == nil || stdout == nil || stderr == nil {
		t.Fatal("expected all three pipe ends")
	}
	defer stdout.Close()
	defer stderr.Close()

	if _, err := io.WriteString(stdin, "ping\n"); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	stdin.Close()

	out, err := io.ReadAll(stdout)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if string(out) != "ping\n" {
		t.Fatalf("stdout = %q", out)
	}

	select {
	case waitErr := <-host.WaitChan():
		if waitErr != nil {
			t.Fatalf("host exited with error: %v", waitErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("host did not exit after stdin closed")
	}
}

func TestLaunchPassesArgsToHost(t *testing.T) {
	exe := testsupport.StubHost(t, `printf '%s\n' "$@"`)
	dir := testsupport.NewManifestDir(t)
	manifestPath := dir.WriteValidManifest("com.example.args", exe)

	m := &manifest.Manifest{
		Name:     "com.example.args",
		Type:     "stdio",
		Path:     exe,
		FilePath: manifestPath,
	}

	launcher := hostproc.NewLauncher(logging.NewNop())
	host, err := launcher.Launch(m, "extension@example.org", manifest.ModeMozilla)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	stdin, stdout, stderr := host.TakeFiles()
	stdin.Close()
	defer stderr.Close()
	defer stdout.Close()

	out, err := io.ReadAll(stdout)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 || lines[0] != manifestPath || lines[1] != "extension@example.org" {
		t.Fatalf("host argv lines = %q", lines)
	}
	_ = host.Wait()
}

func TestLaunchMissingBinary(t *testing.T) {
	dir := testsupport.NewManifestDir(t)
	missing := dir.Path + "/does-not-exist"
	manifestPath := dir.WriteValidManifest("com.example.missing", missing)

	m := &manifest.Manifest{
		Name:     "com.example.missing",
		Type:     "stdio",
		Path:     missing,
		FilePath: manifestPath,
	}

	launcher := hostproc.NewLauncher(logging.NewNop())
	if _, err := launcher.Launch(m, "", manifest.ModeChromium); err == nil {
		t.Fatal("expected launch failure for missing binary")
	}
}

func TestForceExitKillsHost(t *testing.T) {
	exe := testsupport.StubHost(t, `sleep 60`)
	dir := testsupport.NewManifestDir(t)
	manifestPath := dir.WriteValidManifest("com.example.sleep", exe)

	m := &manifest.Manifest{
		Name:     "com.example.sleep",
		Type:     "stdio",
		Path:     exe,
		FilePath: manifestPath,
	}

	launcher := hostproc.NewLauncher(logging.NewNop())
	host, err := launcher.Launch(m, "", manifest.ModeChromium)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	defer host.CloseFiles()

	host.ForceExit()
	select {
	case <-host.WaitChan():
	case <-time.After(5 * time.Second):
		t.Fatal("killed host did not exit")
	}
}
