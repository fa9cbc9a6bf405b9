package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

const testAnalysis = `{"sum":3,"result":[
	{"title":"Pick","type":1,"options":["A","B"],"analysis":{"count":[2,1]}},
	{"title":"Why","type":0,"options":[],"analysis":{"origin":["fun","fun","work"]}}
]}`

// testEnv is an isolated backend, database and config file for one test.
type testEnv struct {
	endpoint string
	dbDir    string
	config   string
	envFile  string
	requests *atomic.Int32
}

// newTestEnv starts a backend serving testAnalysis for every survey.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithBody(t, testAnalysis)
}

// newTestEnvWithBody starts a backend serving body for every survey.
func newTestEnvWithBody(t *testing.T, body string) *testEnv {
	t.Helper()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body)) //nolint:errcheck // Test server
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "paperstat.yaml")
	if err := os.WriteFile(configPath, []byte("backends: {}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &testEnv{
		endpoint: srv.URL,
		dbDir:    filepath.Join(dir, "db"),
		config:   configPath,
		envFile:  filepath.Join(dir, "missing.env"),
		requests: &requests,
	}
}

// run executes the root command with args and returns stdout and stderr.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", e.envFile}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// loadArgs returns the flags connecting a load command to e.
func (e *testEnv) loadArgs() []string {
	return []string{"-e", e.endpoint, "-c", e.config, "--db-dir", e.dbDir}
}

// args joins a subcommand, the load flags and extra arguments.
func (e *testEnv) args(sub string, extra ...string) []string {
	return append(append([]string{sub}, e.loadArgs()...), extra...)
}
