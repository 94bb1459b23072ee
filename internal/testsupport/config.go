package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shotsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories are created so preflight checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "processed")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Kitsu.Server = ""
	cfgVal.Kitsu.Email = ""
	cfgVal.Kitsu.Password = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithKitsuServer points the config at server with fixed test credentials.
func WithKitsuServer(server string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Kitsu.Server = server
		b.cfg.Kitsu.Email = "pipeline@example.com"
		b.cfg.Kitsu.Password = "secret"
	}
}

// WithSequence overrides the sequence written into processed breakdowns.
func WithSequence(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Breakdown.Sequence = name
	}
}

// WithStubbedBinaries writes stub ffmpeg and ffprobe executables and points
// the media config at them. The ffmpeg stub writes a placeholder clip to its
// last argument; the ffprobe stub reports frames video frames at 24 fps.
func WithStubbedBinaries(frames int) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		b.cfg.Media.FFmpegBinary = writeStub(b.t, binDir, "ffmpeg", ffmpegStub)
		b.cfg.Media.FFprobeBinary = writeStub(b.t, binDir, "ffprobe", ffprobeStub(frames))
	}
}

const ffmpegStub = `#!/bin/sh
for last; do :; done
printf 'clip\n' > "$last"
`

func ffprobeStub(frames int) string {
	return "#!/bin/sh\ncat <<'JSON'\n" +
		`{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","r_frame_rate":"24/1","avg_frame_rate":"24/1","nb_frames":"` +
		itoa(frames) + `"}],"format":{"filename":"edit.mov","duration":"10.0"}}` +
		"\nJSON\n"
}

func writeStub(t testing.TB, dir, name, script string) string {
	t.Helper()
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
