package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMainConfigErrorExits re-runs the test binary as the server with an
// invalid DB_DRIVER and expects a plain fatal log line, not a panic.
func TestMainConfigErrorExits(t *testing.T) {
	if os.Getenv("QURA_RUN_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainConfigErrorExits$")
	cmd.Env = append(os.Environ(),
		"QURA_RUN_MAIN=1",
		"DB_DRIVER=mysql",
		"APP_API_KEY=test-key",
		"APP_ENV_FILE="+filepath.Join(t.TempDir(), ".env"),
	)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("err=%v output=%s", err, out)
	}
	if !strings.Contains(string(out), `config: unsupported DB_DRIVER "mysql"`) {
		t.Fatalf("output=%s", out)
	}
	if strings.Contains(string(out), "goroutine ") {
		t.Fatalf("panic trace in output: %s", out)
	}
}
