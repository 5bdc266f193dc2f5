package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PREVIEWCLI"

// flag name -> config key
var flagKeys = map[string]string{
	"limit":          "search.limit",
	"country":        "search.country",
	"log-file":       "log.file",
	"log-level":      "log.level",
	"metrics-listen": "metrics.listen",
}

// BindFlags registers the command-line overrides on fs
func BindFlags(fs *pflag.FlagSet) {
	defaults := DefaultConfig()
	fs.String("config", "", "path to config.toml")
	fs.Int("limit", defaults.Search.Limit, "maximum number of search results (1-500)")
	fs.String("country", defaults.Search.Country, "two-letter store country code")
	fs.String("log-file", defaults.Log.File, "log file path")
	fs.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	fs.String("metrics-listen", "", "address for the prometheus /metrics endpoint")
}

// Load reads the optional config file, environment and flags and returns a
// validated Config together with the viper instance backing it.
func Load(configPath string, fs *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("$HOME/.config/previewcli/")
		v.AddConfigPath("$HOME/.config/")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Watch re-decodes the configuration whenever the file changes and hands
// valid results to fn. Invalid edits are reported through onErr.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("search.endpoint", defaults.Search.Endpoint)
	v.SetDefault("search.media", defaults.Search.Media)
	v.SetDefault("search.entity", defaults.Search.Entity)
	v.SetDefault("search.country", defaults.Search.Country)
	v.SetDefault("search.limit", defaults.Search.Limit)
	v.SetDefault("search.timeout", defaults.Search.Timeout)
	v.SetDefault("ui.progress_bar_width", defaults.UI.ProgressBarWidth)
	v.SetDefault("ui.max_column_width", defaults.UI.MaxColumnWidth)
	v.SetDefault("ui.artwork_width", defaults.UI.ArtworkWidth)
	v.SetDefault("ui.artwork_height", defaults.UI.ArtworkHeight)
	v.SetDefault("ui.seek_step", defaults.UI.SeekStep)
	v.SetDefault("player.end_of_track", defaults.Player.EndOfTrack)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("metrics.listen", defaults.Metrics.Listen)
}
