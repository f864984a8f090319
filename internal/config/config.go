package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	envDataDir = "LEGMIRROR_DATA_DIR"
)

// Duration lets yaml carry values like "1s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %w", s, err)
	}

	*d = Duration(v)

	return nil
}

// Markers are the body phrases the site uses to signal failure on
// pages it still serves with status 200.
type Markers struct {
	Unavailable    string `yaml:"unavailable"`
	NotFound       string `yaml:"not_found"`
	InvalidRequest string `yaml:"invalid_request"`
}

type SiteConfig struct {
	BaseURL        string   `yaml:"base_url"`
	RequestDelay   Duration `yaml:"request_delay"`
	RequestTimeout Duration `yaml:"request_timeout"`
	UserAgent      string   `yaml:"user_agent"`
	Markers        Markers  `yaml:"markers"`
}

type ArchiveConfig struct {
	DataDir       string `yaml:"data_dir"`
	ErrorFileName string `yaml:"error_filename"`
}

type HarvesterConfig struct {
	Workers int `yaml:"workers"`
}

// CategoryConfig is one human-readable legislation group and its type
// codes. Declaration order is processing order.
type CategoryConfig struct {
	Name  string   `yaml:"name"`
	Types []string `yaml:"types"`
}

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Site       SiteConfig       `yaml:"site"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Harvester  HarvesterConfig  `yaml:"harvester"`
	Categories []CategoryConfig `yaml:"categories"`
}

// Default carries the production legislation.gov.uk values so the
// binary runs without a config file.
func Default() *Config {
	return &Config{
		LogLevel: LogLevelInfo,
		Site: SiteConfig{
			BaseURL:        "http://www.legislation.gov.uk",
			RequestDelay:   Duration(time.Second),
			RequestTimeout: Duration(5 * time.Second),
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			Markers: Markers{
				Unavailable:    "This item of legislation isn’t available on this site as it isn’t currently available in a web-publishable format. This could be because the new legislation item hasn’t published yet.",
				NotFound:       "The page you requested could not be found.",
				InvalidRequest: "Your request is not recognised.",
			},
		},
		Archive: ArchiveConfig{
			DataDir:       "legislation_data",
			ErrorFileName: "errorURL.txt",
		},
		Harvester: HarvesterConfig{
			Workers: 1,
		},
		Categories: []CategoryConfig{
			{
				Name: "Primary Legislation",
				Types: []string{
					"ukpga", "ukla", "ukppa", "gbla", "apgb", "gbppa", "aep", "aosp", "asp",
					"aip", "apni", "mnia", "nia", "ukcm", "mwa", "anaw", "asc",
				},
			},
			{
				Name:  "Secondary Legislation",
				Types: []string{"uksi", "ssi", "wsi", "nisr", "ukci", "nisi", "ukmo", "nisro"},
			},
			{
				Name:  "Draft Legislation",
				Types: []string{"ukdsi", "sdsi", "nidsr", "nidsi", "wdsi"},
			},
		},
	}
}

// MustLoad reads the yaml file at path over the defaults. A missing
// file means defaults only; a malformed file panics.
func MustLoad(path string) *Config {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(fmt.Errorf("cannot parse config %s: %w", path, err))
		}
	} else if !os.IsNotExist(err) {
		panic(fmt.Errorf("cannot read config %s: %w", path, err))
	}

	if dataDir, ok := os.LookupEnv(envDataDir); ok {
		cfg.Archive.DataDir = dataDir
	}

	if cfg.Harvester.Workers < 1 {
		cfg.Harvester.Workers = 1
	}

	return cfg
}
