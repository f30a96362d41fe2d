package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/logging"
)

// Options holds the global flags shared by all subcommands.
type Options struct {
	// DefsDir is a directory of *.yaml cluster definitions loaded over the
	// embedded ones. Empty means built-in definitions only.
	DefsDir string

	// LogLevel is the pion/logging level name.
	LogLevel string

	// LogFile, when set, receives logs through a size-rotated file.
	LogFile string

	// LogFileMaxSize is the rotation size in megabytes.
	LogFileMaxSize int
}

// DefaultOptions returns Options with the defaults used by the flags.
func DefaultOptions() Options {
	return Options{
		LogLevel:       "warn",
		LogFileMaxSize: 10,
	}
}

// Register binds the options to fs.
//
//	-defs           overlay definition directory (default: none)
//	-log-level      log level (default: warn)
//	-log-file       rotated log file (default: stderr)
//	-log-max-size   log file rotation size in MB (default: 10)
func (o *Options) Register(fs *flag.FlagSet) {
	defaults := DefaultOptions()
	fs.StringVar(&o.DefsDir, "defs", defaults.DefsDir, "directory of YAML cluster definitions to add or override")
	fs.StringVar(&o.LogLevel, "log-level", defaults.LogLevel, "log level: disabled, error, warn, info, debug, trace")
	fs.StringVar(&o.LogFile, "log-file", defaults.LogFile, "write logs to this file, rotated by size (empty = stderr)")
	fs.IntVar(&o.LogFileMaxSize, "log-max-size", defaults.LogFileMaxSize, "log file rotation size in megabytes")
}

func parseLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	}
	return logging.LogLevelDisabled, fmt.Errorf("unknown log level %q", s)
}

// parseUint accepts decimal or 0x-prefixed hex that fits in bits.
func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %d-bit number %q", bits, s)
	}
	return v, nil
}

// optUint is a numeric flag that remembers whether it was given.
type optUint struct {
	bits  int
	value uint64
	set   bool
}

func (o *optUint) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatUint(o.value, 10)
}

func (o *optUint) Set(s string) error {
	v, err := parseUint(s, o.bits)
	if err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

func uintFlag(fs *flag.FlagSet, name string, bits int, usage string) *optUint {
	o := &optUint{bits: bits}
	fs.Var(o, name, usage)
	return o
}
