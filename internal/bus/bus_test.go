package bus

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func useTempCache(t *testing.T) string {
	t.Helper()
	// unix socket paths are limited to ~108 bytes, keep the root short
	dir, err := os.MkdirTemp("", "hs")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv("XDG_CACHE_HOME", dir)
	return dir
}

func TestPaths(t *testing.T) {
	dir := useTempCache(t)

	sp, err := SockPath()
	if err != nil {
		t.Fatal(err)
	}
	if sp != filepath.Join(dir, "hyprsubs", SockName) {
		t.Errorf("SockPath() = %q", sp)
	}
	pp, _ := PidPath()
	if pp != filepath.Join(dir, "hyprsubs", PidName) {
		t.Errorf("PidPath() = %q", pp)
	}
}

func TestPidFile(t *testing.T) {
	useTempCache(t)

	if err := CheckExistingDaemon(); err != nil {
		t.Fatalf("no pid file: %v", err)
	}
	if err := CreatePidFile(); err != nil {
		t.Fatalf("CreatePidFile() error = %v", err)
	}

	pp, _ := PidPath()
	data, _ := os.ReadFile(pp)
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file = %q", data)
	}

	// Our own process is alive, so the daemon counts as running.
	if err := CheckExistingDaemon(); err == nil {
		t.Error("expected running daemon error")
	}

	if err := RemovePidFile(); err != nil {
		t.Fatalf("RemovePidFile() error = %v", err)
	}
}

func TestCheckPidFile_Stale(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"garbage": "not-a-pid",
		"dead":    "999999999",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".pid")
			os.WriteFile(path, []byte(content), 0o600)
			if err := checkPidFile(path); err != nil {
				t.Errorf("checkPidFile() error = %v, want nil for stale file", err)
			}
		})
	}
}

func TestSendCommand(t *testing.T) {
	useTempCache(t)

	ln, err := Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		line, _ := bufio.NewReader(c).ReadString('\n')
		if line == "s\n" {
			c.Write([]byte("STATUS status=running session=abc\n"))
		}
	}()

	reply, err := SendCommand(CmdStatus)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if !strings.HasPrefix(reply, "STATUS") {
		t.Errorf("reply = %q", reply)
	}

	fields, err := ParseStatus(reply)
	if err != nil {
		t.Fatal(err)
	}
	if fields["status"] != "running" || fields["session"] != "abc" {
		t.Errorf("ParseStatus() = %v", fields)
	}
}

func TestSendCommand_NoDaemon(t *testing.T) {
	useTempCache(t)
	if _, err := SendCommand(CmdStatus); err == nil {
		t.Error("expected error without a daemon")
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	if _, err := ParseStatus("OK toggled\n"); err == nil {
		t.Error("expected error for non-status reply")
	}
}
