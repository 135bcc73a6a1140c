package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tetsuo/mp4probe"
)

// Format specifies the output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// UnmarshalText accepts "text" or "json", in any case.
func (f *Format) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "text", "":
		*f = FormatText
	case "json":
		*f = FormatJSON
	default:
		return fmt.Errorf("unknown format: %s", b)
	}
	return nil
}

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Config holds the probe settings. It is read from YAML and then
// overridden by command-line flags.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	Format      Format `yaml:"format"`
	Trace       bool   `yaml:"trace"`
	MaxDepth    int    `yaml:"max_depth"`
	BufferSize  int    `yaml:"buffer_size"`
	HistorySize int    `yaml:"history_size"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		Format:      FormatText,
		MaxDepth:    mp4.DefaultMaxDepth,
		BufferSize:  mp4.DefaultBufferSize,
		HistorySize: mp4.DefaultHistorySize,
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values; an empty file yields the defaults.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return conf, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		return conf, fmt.Errorf("parsing %s: %w", path, err)
	}
	if conf.MaxDepth <= 0 {
		return conf, fmt.Errorf("parsing %s: max_depth must be positive, got %d", path, conf.MaxDepth)
	}
	return conf, nil
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back to
// info.
func ParseLevel(level string) slog.Level {
	var lv slog.LevelVar
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lv.Level()
}
