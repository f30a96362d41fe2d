package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pion/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
)

const envPrefix = "MATTER_SCHEMA"

// app carries the global options and the lazily built registry shared by
// the subcommands.
type app struct {
	opts   Options
	out    io.Writer
	errOut io.Writer

	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
	logFile       io.Closer
	reg           *schema.Registry
}

func newApp(out, errOut io.Writer) *app {
	return &app{opts: DefaultOptions(), out: out, errOut: errOut}
}

func (a *app) command() *ffcli.Command {
	fs := flag.NewFlagSet("matter-schema", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	a.opts.Register(fs)
	fs.String("config", "", "config file of \"flag value\" lines")

	return &ffcli.Command{
		Name:       "matter-schema",
		ShortUsage: "matter-schema [flags] <subcommand> [args]",
		FlagSet:    fs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix(envPrefix),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
		},
		Subcommands: []*ffcli.Command{
			a.clustersCommand(),
			a.showCommand(),
			a.encodeCommand(),
			a.decodeCommand(),
			a.datasetCommand(),
		},
		Exec: func(_ context.Context, _ []string) error {
			fs.Usage()
			return flag.ErrHelp
		},
	}
}

func (a *app) subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("matter-schema "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// setupLogging configures the pion logger factory from the options. Logs go
// to stderr unless -log-file is set.
func (a *app) setupLogging() error {
	if a.loggerFactory != nil {
		return nil
	}
	level, err := parseLevel(a.opts.LogLevel)
	if err != nil {
		return err
	}
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = level
	factory.Writer = a.errOut
	if a.opts.LogFile != "" {
		w := &lumberjack.Logger{
			Filename:   a.opts.LogFile,
			MaxSize:    a.opts.LogFileMaxSize,
			MaxBackups: 3,
		}
		factory.Writer = w
		a.logFile = w
	}
	a.loggerFactory = factory
	a.log = factory.NewLogger("cli")
	return nil
}

// registry builds the registry once: embedded definitions plus the
// overlay directory, if any.
func (a *app) registry() (*schema.Registry, error) {
	if a.reg != nil {
		return a.reg, nil
	}
	if err := a.setupLogging(); err != nil {
		return nil, err
	}
	b, err := schema.NewDefaultBuilder(schema.BuilderConfig{LoggerFactory: a.loggerFactory})
	if err != nil {
		return nil, err
	}
	if a.opts.DefsDir != "" {
		a.log.Infof("loading definitions from %s", a.opts.DefsDir)
		if err := b.AddFS(os.DirFS(a.opts.DefsDir), "*.yaml"); err != nil {
			return nil, err
		}
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	a.log.Debugf("registry has %d clusters", len(reg.Clusters()))
	a.reg = reg
	return reg, nil
}

// cluster resolves a cluster by name or by numeric ID.
func (a *app) cluster(ref string) (*schema.ClusterSchema, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(ref, "0x") || (ref != "" && ref[0] >= '0' && ref[0] <= '9') {
		id, err := parseUint(ref, 32)
		if err != nil {
			return nil, err
		}
		return reg.Cluster(datamodel.ClusterID(id))
	}
	return reg.ClusterByName(ref)
}

func (a *app) close() {
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			fmt.Fprintf(a.errOut, "closing log file: %v\n", err)
		}
	}
}
