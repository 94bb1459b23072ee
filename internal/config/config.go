package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Kitsu contains connection and publishing settings for the Kitsu tracking server.
type Kitsu struct {
	Server         string `toml:"server"`
	Email          string `toml:"email"`
	Password       string `toml:"password"`
	TaskType       string `toml:"task_type"`
	TaskStatus     string `toml:"task_status"`
	Comment        string `toml:"comment"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Breakdown names the columns read from the breakdown spreadsheet.
type Breakdown struct {
	ShotColumn        string `toml:"shot_column"`
	FrameInColumn     string `toml:"frame_in_column"`
	FrameOutColumn    string `toml:"frame_out_column"`
	DurationColumn    string `toml:"duration_column"`
	FPSColumn         string `toml:"fps_column"`
	DescriptionColumn string `toml:"description_column"`
	Sequence          string `toml:"sequence"`
}

// Media contains ffmpeg settings for clip export.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	PixelFormat   string `toml:"pixel_format"`
	CRF           int    `toml:"crf"`
	Extension     string `toml:"extension"`
	Workers       int    `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shotsync.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Kitsu: tracking server credentials and publish settings
//   - Breakdown: spreadsheet column names and default sequence
//   - Media: ffmpeg clip export settings
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Kitsu     Kitsu     `toml:"kitsu"`
	Breakdown Breakdown `toml:"breakdown"`
	Media     Media     `toml:"media"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shotsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Credentials missing from the file are read from
// the environment, which is first seeded from a .env file in the working directory.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv seeds the process environment from a dotenv file. Variables that
// are already set win over file values. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shotsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories every command relies on.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// KitsuTimeout returns the per-request timeout for Kitsu API calls.
func (c *Config) KitsuTimeout() time.Duration {
	return time.Duration(c.Kitsu.TimeoutSeconds) * time.Second
}

// KitsuConfigured reports whether server credentials are available.
func (c *Config) KitsuConfigured() bool {
	return c.Kitsu.Server != "" && c.Kitsu.Email != "" && c.Kitsu.Password != ""
}

// RequireKitsu returns an error naming the missing credential settings.
func (c *Config) RequireKitsu() error {
	var missing []string
	if c.Kitsu.Server == "" {
		missing = append(missing, "KITSU_SERVER")
	}
	if c.Kitsu.Email == "" {
		missing = append(missing, "KITSU_EMAIL")
	}
	if c.Kitsu.Password == "" {
		missing = append(missing, "KITSU_PASSWORD")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("kitsu credentials missing: set %s (environment, .env, or [kitsu] in config)", strings.Join(missing, ", "))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
