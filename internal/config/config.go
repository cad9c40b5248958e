package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockcsv/internal/provider"
)

type AlphaVantage struct {
	APIKey     string `json:"api_key" yaml:"api_key"`
	Endpoint   string `json:"endpoint" yaml:"endpoint"`
	Function   string `json:"function" yaml:"function"`
	OutputSize string `json:"output_size" yaml:"output_size"`
	Interval   string `json:"interval" yaml:"interval"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
}

type Yahoo struct {
	Endpoint   string `json:"endpoint" yaml:"endpoint"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
}

type Output struct {
	Path string `json:"path" yaml:"path"`
}

type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type Config struct {
	Mode         string       `json:"mode" yaml:"mode"`
	Symbols      []string     `json:"symbols" yaml:"symbols"`
	AlphaVantage AlphaVantage `json:"alphavantage" yaml:"alphavantage"`
	Yahoo        Yahoo        `json:"yahoo" yaml:"yahoo"`
	Output       Output       `json:"output" yaml:"output"`
	Log          Log          `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Mode: "timeseries",
		AlphaVantage: AlphaVantage{
			Endpoint:   "https://www.alphavantage.co/query",
			Function:   "TIME_SERIES_DAILY_ADJUSTED",
			TimeoutSec: 30,
		},
		Yahoo: Yahoo{
			Endpoint:   "https://query1.finance.yahoo.com/v7/finance/quote",
			TimeoutSec: 10,
		},
		Output: Output{Path: "prices.csv"},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads config from path (JSON, or YAML for .yaml/.yml). If path is
// empty, config.json then config.yaml in the working directory are tried;
// a missing file means defaults. A .env file, when present, seeds the
// environment, and environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := unmarshal(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Variables already set in the process win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func unmarshal(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MODE"); v != "" { cfg.Mode = v }
	if v := os.Getenv("SYMBOLS"); v != "" { cfg.Symbols = SplitCSV(v) }
	if v := os.Getenv("OUTPUT_PATH"); v != "" { cfg.Output.Path = v }
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" { cfg.AlphaVantage.APIKey = v }
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" { cfg.AlphaVantage.Endpoint = v }
	if v := os.Getenv("ALPHAVANTAGE_FUNCTION"); v != "" { cfg.AlphaVantage.Function = v }
	if v := os.Getenv("ALPHAVANTAGE_OUTPUTSIZE"); v != "" { cfg.AlphaVantage.OutputSize = v }
	if v := os.Getenv("ALPHAVANTAGE_INTERVAL"); v != "" { cfg.AlphaVantage.Interval = v }
	if v := os.Getenv("ALPHAVANTAGE_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.AlphaVantage.TimeoutSec = x }
	}
	if v := os.Getenv("YAHOO_ENDPOINT"); v != "" { cfg.Yahoo.Endpoint = v }
	if v := os.Getenv("YAHOO_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Yahoo.TimeoutSec = x }
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = v }
	if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Log.Format = v }
}

// Validate checks what a run needs before any request is made.
func (c Config) Validate() error {
	mode, err := provider.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	var errs []error
	if mode == provider.ModeTimeSeries && c.AlphaVantage.APIKey == "" {
		errs = append(errs, errors.New("ALPHAVANTAGE_API_KEY is required for timeseries mode"))
	}
	if c.Output.Path == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	return errors.Join(errs...)
}

// SplitCSV splits a comma-separated list, dropping blank entries.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" { out = append(out, p) }
	}
	return out
}
