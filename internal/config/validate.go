package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// undefined behavior at runtime. A non-positive audio maximum in particular
// must stop the daemon before any volume translation is attempted.
func (c *Config) Validate() error {
	var problems []string

	if c.Audio.MaxVolume <= 0 {
		problems = append(problems, fmt.Sprintf("audio.max_volume must be positive, got %d", c.Audio.MaxVolume))
	}
	if c.Audio.MinVolume < 0 {
		problems = append(problems, fmt.Sprintf("audio.min_volume must not be negative, got %d", c.Audio.MinVolume))
	}
	if c.Audio.MaxVolume > 0 && c.Audio.MinVolume >= c.Audio.MaxVolume {
		problems = append(problems, fmt.Sprintf("audio.min_volume %d must be below audio.max_volume %d", c.Audio.MinVolume, c.Audio.MaxVolume))
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
