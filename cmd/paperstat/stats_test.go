package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/paperstat/internal/config"
	"github.com/nao1215/paperstat/internal/database"
)

// TestNewStatsCmd tests the stats command creation.
func TestNewStatsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewStatsCmd()
	for _, name := range []string{"endpoint", "config", "timeout", "batch", "offline", "no-save",
		"db-dir", "date-start", "date-end", "proxy", "cookie", "title", "json", "markdown", "html", "output", "hide-empty"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if flag := cmd.Flags().Lookup("batch"); flag.DefValue != "4" {
		t.Errorf("expected batch default 4, got %s", flag.DefValue)
	}
}

// TestRunStatsCmd tests the stats command against a test backend.
func TestRunStatsCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the statistics table", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		out, _, err := env.run(t, env.args("stats", "--title", "Team survey", "5")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		for _, want := range []string{"PAPERSTAT REPORT", "Team survey", "Pick", "Why", "Complete"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("writes JSON", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		out, _, err := env.run(t, env.args("stats", "--json", "--no-save", "5")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		var doc struct {
			Version string `json:"version"`
			Report  struct {
				SurveyID    string `json:"survey_id"`
				Respondents int    `json:"respondents"`
				Rows        []any  `json:"rows"`
			} `json:"report"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if doc.Report.SurveyID != "5" || doc.Report.Respondents != 3 {
			t.Errorf("unexpected report %+v", doc.Report)
		}
		if len(doc.Report.Rows) != 4 {
			t.Errorf("expected 4 rows, got %d", len(doc.Report.Rows))
		}
		if _, err := os.Stat(filepath.Join(env.dbDir, database.FileName)); err == nil {
			t.Error("expected no database with --no-save")
		}
	})

	t.Run("writes the report file", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		path := filepath.Join(t.TempDir(), "reports", "survey.md")

		_, stderr, err := env.run(t, env.args("stats", "--markdown", "-o", path, "5")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if !strings.Contains(stderr, path) {
			t.Errorf("expected file location in %q", stderr)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), "```mermaid") {
			t.Errorf("expected mermaid chart in markdown:\n%s", data)
		}
		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected permissions 0600, got %o", perm)
			}
		}
	})

	t.Run("loads several surveys", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		out, _, err := env.run(t, env.args("stats", "-b", "2", "5", "6", "7")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if got := strings.Count(out, "PAPERSTAT REPORT"); got != 3 {
			t.Errorf("expected 3 reports, got %d", got)
		}
		if got := env.requests.Load(); got != 3 {
			t.Errorf("expected 3 requests, got %d", got)
		}
	})

	t.Run("offline reads the stored snapshot", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if _, _, err := env.run(t, env.args("stats", "5")...); err != nil {
			t.Fatalf("online stats failed: %v", err)
		}
		out, _, err := env.run(t, "stats", "--offline", "-c", env.config, "--db-dir", env.dbDir, "5")
		if err != nil {
			t.Fatalf("offline stats failed: %v", err)
		}
		if !strings.Contains(out, "from snapshot") {
			t.Errorf("expected snapshot status in output:\n%s", out)
		}
		if got := env.requests.Load(); got != 1 {
			t.Errorf("expected 1 request, got %d", got)
		}
	})

	t.Run("offline without snapshot fails", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, _, err := env.run(t, "stats", "--offline", "-c", env.config, "--db-dir", env.dbDir, "5")
		if err == nil {
			t.Error("expected error without a database")
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, _, err := env.run(t, env.args("stats", "--json", "--html", "5")...)
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("hide-empty leaves unanswered questions out", func(t *testing.T) {
		t.Parallel()
		env := newTestEnvWithBody(t, `{"sum":1,"result":[
			{"title":"Pick","type":1,"options":["A"],"analysis":{"count":[1]}},
			{"title":"Silent","type":0,"options":[],"analysis":{"origin":[]}}
		]}`)

		out, _, err := env.run(t, env.args("stats", "--no-save", "5")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if !strings.Contains(out, "Silent") {
			t.Errorf("expected the unanswered question by default, got %q", out)
		}

		out, _, err = env.run(t, env.args("stats", "--no-save", "--hide-empty", "5")...)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if strings.Contains(out, "Silent") || !strings.Contains(out, "Pick") {
			t.Errorf("expected only answered questions, got %q", out)
		}
	})

	t.Run("date-filtered analysis is not stored", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if _, _, err := env.run(t, env.args("stats", "--date-start", "2026-09-01", "5")...); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(env.dbDir, database.FileName)); err == nil {
			t.Error("expected no database for a filtered analysis")
		}
	})

	t.Run("offline rejects date filters", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if _, _, err := env.run(t, env.args("stats", "5")...); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		_, _, err := env.run(t, env.args("stats", "--offline", "--date-end", "2026-09-01", "5")...)
		if !errors.Is(err, config.ErrOfflineDateFilter) {
			t.Errorf("expected ErrOfflineDateFilter, got %v", err)
		}
	})

	t.Run("rejects a bad date", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, _, err := env.run(t, env.args("stats", "--date-start", "yesterday", "5")...)
		if !errors.Is(err, config.ErrInvalidDate) {
			t.Errorf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, _, err := env.run(t, "stats", "-e", env.endpoint, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "5")
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected config not found error, got %v", err)
		}
	})

	t.Run("requires a survey id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if _, _, err := env.run(t, env.args("stats")...); err == nil {
			t.Error("expected error without arguments")
		}
	})
}
