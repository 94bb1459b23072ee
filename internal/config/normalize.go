package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeKitsu()
	c.normalizeBreakdown()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeKitsu() {
	c.Kitsu.Server = envFallback(c.Kitsu.Server, "KITSU_SERVER")
	c.Kitsu.Email = envFallback(c.Kitsu.Email, "KITSU_EMAIL")
	c.Kitsu.Password = envFallback(c.Kitsu.Password, "KITSU_PASSWORD")
	c.Kitsu.Server = strings.TrimRight(c.Kitsu.Server, "/")

	c.Kitsu.TaskType = strings.TrimSpace(c.Kitsu.TaskType)
	if c.Kitsu.TaskType == "" {
		c.Kitsu.TaskType = defaultKitsuTaskType
	}
	c.Kitsu.TaskStatus = strings.TrimSpace(c.Kitsu.TaskStatus)
	if c.Kitsu.TaskStatus == "" {
		c.Kitsu.TaskStatus = defaultKitsuTaskStatus
	}
	if strings.TrimSpace(c.Kitsu.Comment) == "" {
		c.Kitsu.Comment = defaultKitsuComment
	}
	if c.Kitsu.TimeoutSeconds <= 0 {
		c.Kitsu.TimeoutSeconds = defaultKitsuTimeout
	}
}

func (c *Config) normalizeBreakdown() {
	b := &c.Breakdown
	b.ShotColumn = defaultIfBlank(b.ShotColumn, defaultShotColumn)
	b.FrameInColumn = defaultIfBlank(b.FrameInColumn, defaultFrameInColumn)
	b.FrameOutColumn = defaultIfBlank(b.FrameOutColumn, defaultFrameOutColumn)
	b.DurationColumn = defaultIfBlank(b.DurationColumn, defaultDurationColumn)
	b.FPSColumn = defaultIfBlank(b.FPSColumn, defaultFPSColumn)
	b.DescriptionColumn = defaultIfBlank(b.DescriptionColumn, defaultDescriptionColumn)
	b.Sequence = defaultIfBlank(b.Sequence, defaultSequence)
}

func (c *Config) normalizeMedia() {
	m := &c.Media
	m.FFmpegBinary = defaultIfBlank(m.FFmpegBinary, defaultFFmpegBinary)
	m.FFprobeBinary = defaultIfBlank(m.FFprobeBinary, defaultFFprobeBinary)
	m.VideoCodec = defaultIfBlank(m.VideoCodec, defaultVideoCodec)
	m.PixelFormat = defaultIfBlank(m.PixelFormat, defaultPixelFormat)
	m.Extension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(m.Extension)), ".")
	if m.Extension == "" {
		m.Extension = defaultExtension
	}
	if m.Workers <= 0 {
		m.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// envFallback returns value when set, otherwise the named environment variable.
func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func defaultIfBlank(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
