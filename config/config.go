package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
)

// Config represents the complete application configuration
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	Player  PlayerConfig  `mapstructure:"player"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SearchConfig contains catalog search settings
type SearchConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Media    string `mapstructure:"media"`
	Entity   string `mapstructure:"entity"`
	Country  string `mapstructure:"country"`
	Limit    int    `mapstructure:"limit"`
	Timeout  int    `mapstructure:"timeout"` // in seconds
}

// UIConfig contains user interface settings
type UIConfig struct {
	ProgressBarWidth int `mapstructure:"progress_bar_width"`
	MaxColumnWidth   int `mapstructure:"max_column_width"`
	ArtworkWidth     int `mapstructure:"artwork_width"`
	ArtworkHeight    int `mapstructure:"artwork_height"`
	SeekStep         int `mapstructure:"seek_step"` // in seconds
}

// PlayerConfig contains playback behaviour settings
type PlayerConfig struct {
	EndOfTrack string `mapstructure:"end_of_track"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint; empty disables it
	Listen string `mapstructure:"listen"`
}

// GetTimeout returns the search timeout as a time.Duration
func (s *SearchConfig) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetSeekStep returns the relative seek step as a time.Duration
func (u *UIConfig) GetSeekStep() time.Duration {
	return time.Duration(u.SeekStep) * time.Second
}

// Validate checks every setting and reports all violations at once
func (c *Config) Validate() error {
	var err error
	if u, perr := url.Parse(c.Search.Endpoint); perr != nil || u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("search.endpoint: invalid URL %q", c.Search.Endpoint))
	}
	if c.Search.Limit < 1 || c.Search.Limit > 500 {
		err = multierr.Append(err, fmt.Errorf("search.limit: must be between 1 and 500, got %d", c.Search.Limit))
	}
	if c.Search.Timeout < 1 {
		err = multierr.Append(err, fmt.Errorf("search.timeout: must be positive, got %d", c.Search.Timeout))
	}
	if c.UI.ProgressBarWidth < 5 {
		err = multierr.Append(err, fmt.Errorf("ui.progress_bar_width: must be at least 5, got %d", c.UI.ProgressBarWidth))
	}
	if c.UI.MaxColumnWidth < 5 {
		err = multierr.Append(err, fmt.Errorf("ui.max_column_width: must be at least 5, got %d", c.UI.MaxColumnWidth))
	}
	if c.UI.ArtworkWidth < 0 || c.UI.ArtworkHeight < 0 {
		err = multierr.Append(err, fmt.Errorf("ui.artwork_width/height: must not be negative"))
	}
	if c.UI.SeekStep < 1 {
		err = multierr.Append(err, fmt.Errorf("ui.seek_step: must be positive, got %d", c.UI.SeekStep))
	}
	switch c.Player.EndOfTrack {
	case "advance", "stop":
	default:
		err = multierr.Append(err, fmt.Errorf("player.end_of_track: expected advance or stop, got %q", c.Player.EndOfTrack))
	}
	return err
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Endpoint: "https://itunes.apple.com/search",
			Media:    "music",
			Entity:   "song",
			Limit:    500,
			Timeout:  15,
		},
		UI: UIConfig{
			ProgressBarWidth: 30,
			MaxColumnWidth:   40,
			ArtworkWidth:     24,
			ArtworkHeight:    10,
			SeekStep:         5,
		},
		Player: PlayerConfig{
			EndOfTrack: "advance",
		},
		Log: LogConfig{
			File:  filepath.Join(os.TempDir(), "previewcli.log"),
			Level: "info",
		},
	}
}
