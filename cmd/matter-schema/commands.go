package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v3/ffcli"
	"gopkg.in/yaml.v3"

	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

var errUsage = errors.New("wrong number of arguments")

func (a *app) clustersCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "clusters",
		ShortUsage: "matter-schema clusters",
		ShortHelp:  "list registered clusters",
		FlagSet:    a.subFlags("clusters"),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tREVISION\tATTRIBUTES\tCOMMANDS")
			for _, c := range reg.Clusters() {
				fmt.Fprintf(tw, "0x%04X\t%s\t%d\t%d\t%d\n",
					uint32(c.ID), c.Name, c.Revision, len(c.Attributes), len(c.Commands))
			}
			return tw.Flush()
		},
	}
}

func (a *app) showCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "show",
		ShortUsage: "matter-schema show <cluster>",
		ShortHelp:  "dump a cluster definition as YAML",
		LongHelp:   "The cluster is given by name (OnOff) or ID (0x0006). Global attributes are omitted.",
		FlagSet:    a.subFlags("show"),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			c, err := a.cluster(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(schema.ToDef(c)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (a *app) encodeCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "encode",
		ShortUsage: "matter-schema encode <cluster> <command> [json-args]",
		ShortHelp:  "build a command and print its arguments and TLV payload",
		LongHelp: "Arguments are a JSON object keyed by parameter name. Enums may be given by name, " +
			"bitmaps as a list of set field names and octet strings as hex.",
		FlagSet: a.subFlags("encode"),
		Exec: func(_ context.Context, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return errUsage
			}
			c, err := a.cluster(args[0])
			if err != nil {
				return err
			}
			desc, err := c.CommandByName(args[1])
			if err != nil {
				return err
			}
			var raw string
			if len(args) == 3 {
				raw = args[2]
			}
			values, err := codec.ArgsFromJSON(c, desc, []byte(raw))
			if err != nil {
				return err
			}
			cmd, err := codec.Build(c, desc.Name, values)
			if err != nil {
				return err
			}
			payload, err := codec.EncodeTLV(cmd)
			if err != nil {
				return err
			}
			js, err := cmd.MarshalJSON()
			if err != nil {
				return err
			}
			a.log.Debugf("encoded %s: %d bytes", cmd, len(payload))

			fmt.Fprintf(a.out, "command: %s.%s (0x%02X)\n", c.Name, desc.Name, uint32(desc.ID))
			fmt.Fprintf(a.out, "args:    %s\n", js)
			fmt.Fprintf(a.out, "tlv:     %s\n", strings.ToUpper(hex.EncodeToString(payload)))
			if desc.Timed {
				fmt.Fprintln(a.out, "timed:   required")
			}
			return nil
		},
	}
}

func (a *app) decodeCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "decode",
		ShortUsage: "matter-schema decode <cluster> <attribute|command> <hex>",
		ShortHelp:  "decode an attribute value or command payload and print it as JSON",
		FlagSet:    a.subFlags("decode"),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 3 {
				return errUsage
			}
			c, err := a.cluster(args[0])
			if err != nil {
				return err
			}
			data, err := hex.DecodeString(strings.Join(strings.Fields(args[2]), ""))
			if err != nil {
				return fmt.Errorf("payload: %w", err)
			}
			js, err := decodeElement(c, args[1], data)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\n", js)
			return nil
		},
	}
}

// decodeElement decodes data as the named attribute, or failing that as the
// named command's payload.
func decodeElement(c *schema.ClusterSchema, name string, data []byte) ([]byte, error) {
	attr, err := c.AttributeByName(name)
	if err == nil {
		v, err := codec.DecodeTLV(c.Registry(), attr.Type, data)
		if err != nil {
			return nil, err
		}
		return types.MarshalValue(v)
	}
	if !errors.Is(err, datamodel.ErrAttributeNotFound) {
		return nil, err
	}
	desc, err := c.CommandByName(name)
	if err != nil {
		return nil, fmt.Errorf("%s has no attribute or command %q", c.Name, name)
	}
	cmd, err := codec.DecodeCommand(c, desc, data)
	if err != nil {
		return nil, err
	}
	return cmd.MarshalJSON()
}
