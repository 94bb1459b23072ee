package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shotsync/internal/config"
	"shotsync/internal/testsupport"
)

var breakdownHeader = []string{"SHOT", "FRAME IN", "FRAME OUT", "FRAME DURATION", "FPS", "Clip Name"}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv isolates HOME, the working directory and the Kitsu
// environment variables, then writes cfg to a config file.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"KITSU_SERVER", "KITSU_EMAIL", "KITSU_PASSWORD"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)

	configPath := filepath.Join(base, "shotsync-test.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath, "--log-level", "debug"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

// writeSampleBreakdown writes three shots listed out of order. SH_010 and
// SH_020 run 24 frames, SH_030 runs 12.
func writeSampleBreakdown(t *testing.T, dir string) string {
	t.Helper()
	return testsupport.WriteBreakdown(t, dir, "ep01.csv", breakdownHeader,
		[]string{"SH_020_v2", "24", "48", "24", "24", "Hallway"},
		[]string{"SH_010", "0", "24", "24", "24", "Opening"},
		[]string{"SH_030", "48", "60", "12", "24", "Door"},
	)
}

// onlyRunDir returns the single timestamped folder under the output dir.
func onlyRunDir(t *testing.T, cfg *config.Config) string {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(cfg.Paths.OutputDir, e.Name()))
		}
	}
	if len(dirs) != 1 {
		t.Fatalf("expected one run folder, got %v", dirs)
	}
	return dirs[0]
}

func processedCSV(t *testing.T, dir string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*_kitsu_*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one processed csv in %s, got %v (%v)", dir, matches, err)
	}
	return matches[0]
}
