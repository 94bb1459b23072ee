package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Kitsu credentials are optional
// here because only push workflows need them; see RequireKitsu.
func (c *Config) Validate() error {
	if err := c.validateKitsu(); err != nil {
		return err
	}
	if err := c.validateBreakdown(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateKitsu() error {
	if c.Kitsu.Server != "" {
		parsed, err := url.Parse(c.Kitsu.Server)
		if err != nil {
			return fmt.Errorf("kitsu.server: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("kitsu.server must be an http(s) URL, got %q", c.Kitsu.Server)
		}
	}
	if c.Kitsu.TimeoutSeconds <= 0 {
		return errors.New("kitsu.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBreakdown() error {
	columns := map[string]string{
		"breakdown.shot_column":        c.Breakdown.ShotColumn,
		"breakdown.frame_in_column":    c.Breakdown.FrameInColumn,
		"breakdown.frame_out_column":   c.Breakdown.FrameOutColumn,
		"breakdown.duration_column":    c.Breakdown.DurationColumn,
		"breakdown.fps_column":         c.Breakdown.FPSColumn,
		"breakdown.description_column": c.Breakdown.DescriptionColumn,
	}
	seen := make(map[string]string, len(columns))
	for key, value := range columns {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if other, ok := seen[value]; ok {
			return fmt.Errorf("%s and %s both name column %q", other, key, value)
		}
		seen[value] = key
	}
	if strings.ContainsAny(c.Breakdown.Sequence, "/\\") {
		return fmt.Errorf("breakdown.sequence %q must not contain path separators", c.Breakdown.Sequence)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.CRF < 0 || c.Media.CRF > 51 {
		return errors.New("media.crf must be between 0 and 51")
	}
	if c.Media.Workers <= 0 {
		return errors.New("media.workers must be positive")
	}
	if strings.ContainsAny(c.Media.Extension, "/\\") {
		return fmt.Errorf("media.extension %q is not a file extension", c.Media.Extension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
