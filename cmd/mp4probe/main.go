// Command mp4probe walks an MP4 file's box tree and prints a summary of the
// presentation: duration, timestamps, tracks, resolution and audio format.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	console "github.com/phsym/console-slog"

	"github.com/tetsuo/mp4probe"
)

// Version is printed in the text banner.
var Version = "0.9.0"

// BoxNode is one visited box in JSON output.
type BoxNode struct {
	Type     string `json:"type"`
	Offset   int64  `json:"offset"`
	Size     uint64 `json:"size"`
	Depth    int    `json:"depth"`
	UserType string `json:"userType,omitempty"`
}

// Report is the JSON output document.
type Report struct {
	File     string        `json:"file"`
	Boxes    []BoxNode     `json:"boxes,omitempty"`
	Metadata *mp4.Metadata `json:"metadata"`
	Error    string        `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.String("format", "text", "output format: text (default), json")
	flag.Bool("trace", false, "print every box visited")
	flag.Int("max-depth", mp4.DefaultMaxDepth, "deepest box nesting accepted")
	flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.mp4>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	conf := DefaultConfig()
	if *configPath != "" {
		var err error
		if conf, err = LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := applyFlags(&conf, flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:      ParseLevel(conf.LogLevel),
		TimeFormat: time.TimeOnly,
	}))

	os.Exit(run(flag.Arg(0), conf, logger, os.Stdout))
}

// applyFlags copies explicitly set flags over conf.
func applyFlags(conf *Config, fs *flag.FlagSet) (err error) {
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		g, _ := f.Value.(flag.Getter)
		switch f.Name {
		case "format":
			err = conf.Format.UnmarshalText([]byte(f.Value.String()))
		case "trace":
			conf.Trace, _ = g.Get().(bool)
		case "max-depth":
			conf.MaxDepth, _ = g.Get().(int)
			if conf.MaxDepth <= 0 {
				err = fmt.Errorf("max-depth must be positive, got %d", conf.MaxDepth)
			}
		case "log-level":
			conf.LogLevel = f.Value.String()
		}
	})
	return err
}

// run probes path and writes the report to out. It returns the process
// exit code.
func run(path string, conf Config, logger *slog.Logger, out io.Writer) int {
	if conf.Format == FormatText {
		fmt.Fprintf(out, "welcome using mp4probe, version: %s\n", Version)
		fmt.Fprintf(out, "mpeg4 file: %s\n\n", path)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("can not open file", "file", path, "error", err)
		return 1
	}
	defer f.Close()

	src, err := mp4.NewSeekSource(f, conf.BufferSize, conf.HistorySize)
	if err != nil {
		logger.Error("can not measure file", "file", path, "error", err)
		return 1
	}

	report := Report{File: path}
	opts := mp4.Options{
		MaxDepth: conf.MaxDepth,
		Logger:   logger.With("file", path),
	}
	if conf.Trace {
		if conf.Format == FormatJSON {
			opts.Trace = func(e mp4.TraceEntry) {
				n := BoxNode{Type: e.Type.String(), Offset: e.Offset, Size: e.Size, Depth: e.Depth}
				if e.UserType != uuid.Nil {
					n.UserType = e.UserType.String()
				}
				report.Boxes = append(report.Boxes, n)
			}
		} else {
			opts.Trace = mp4.WriteTrace(out)
		}
	}

	meta, walkErr := mp4.Walk(src, opts)
	report.Metadata = meta
	if walkErr != nil {
		logger.Warn("walk failed, reporting partial metadata", "file", path, "error", walkErr)
		report.Error = walkErr.Error()
	}

	switch conf.Format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	default:
		fmt.Fprintln(out)
		err = meta.WriteSummary(out)
	}
	if err != nil {
		logger.Error("writing report", "error", err)
		return 1
	}
	if walkErr != nil {
		return 1
	}
	return 0
}
