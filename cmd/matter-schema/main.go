// matter-schema inspects the Matter cluster schema registry and converts
// command payloads and Thread operational datasets.
//
// Usage:
//
//	matter-schema [flags] <subcommand> [args]
//
// Subcommands:
//
//	clusters        list registered clusters
//	show            dump one cluster definition as YAML
//	encode          build a command from JSON arguments and print its TLV
//	decode          decode an attribute value or command payload from TLV
//	thread-dataset  parse, convert and fill in a Thread operational dataset
//
// Flags:
//
//	-defs       directory of YAML cluster definitions added over the built-in ones
//	-log-level  error, warn, info, debug or trace (default: warn)
//	-log-file   write logs to a rotated file instead of stderr
//	-config     plain "flag value" config file
//
// Every flag may also be set from a MATTER_SCHEMA_* environment variable.
//
// Example:
//
//	matter-schema encode OnOff offWithEffect '{"effectIdentifier":"dyingLight","effectVariant":0}'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:], newApp(os.Stdout, os.Stderr)); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "matter-schema: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, a *app) error {
	root := a.command()
	if err := root.Parse(args); err != nil {
		return err
	}
	defer a.close()
	return root.Run(ctx)
}
