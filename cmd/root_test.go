package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/tzverify/internal/verifier"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tzverify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const quietConfig = `
logging:
  development: false
  level: error
`

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunCommandPasses(t *testing.T) {
	cfg := writeConfig(t, quietConfig)
	out, err := execute(t, context.Background(), "--config", cfg, "run")
	require.NoError(t, err, out)
	require.Contains(t, out, "PASS")
	require.Contains(t, out, fmt.Sprintf("%d passed, 0 failed, 0 errored", len(verifier.Catalog())))
}

func TestRunCommandJSONAndFilter(t *testing.T) {
	cfg := writeConfig(t, quietConfig)
	out, err := execute(t, context.Background(), "--config", cfg, "run", "--scenario", "dst", "-o", "json")
	require.NoError(t, err, out)

	var report verifier.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 2, report.Passed)
	require.Contains(t, report.URI, "memory://reports/")
}

func TestRunCommandRejectsUnknownScenario(t *testing.T) {
	cfg := writeConfig(t, quietConfig)
	_, err := execute(t, context.Background(), "--config", cfg, "run", "--scenario", "bogus")
	require.ErrorContains(t, err, "bogus")
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	cfg := writeConfig(t, "report:\n  format: xml\n")
	_, err := execute(t, context.Background(), "--config", cfg, "run")
	require.ErrorContains(t, err, "report.format")
}

func TestScenariosCommand(t *testing.T) {
	cfg := writeConfig(t, quietConfig)
	out, err := execute(t, context.Background(), "--config", cfg, "scenarios")
	require.NoError(t, err)
	for _, sc := range verifier.Catalog() {
		require.Contains(t, out, sc.Name)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeCommandShutsDownOnCancel(t *testing.T) {
	port := freePort(t)
	cfg := writeConfig(t, quietConfig+fmt.Sprintf("server:\n  port: %d\n", port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := execute(t, ctx, "--config", cfg, "serve")
		done <- err
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test probe
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
