package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/backkem/matterschema/pkg/threaddataset"
)

type datasetFlags struct {
	hexIn       string
	jsonIn      string
	format      string
	networkName string
	extPanID    string
	meshPrefix  string
	networkKey  string
	generateKey bool
	passphrase  string
	channel     *optUint
	panID       *optUint
}

func (a *app) datasetCommand() *ffcli.Command {
	var f datasetFlags
	fs := a.subFlags("thread-dataset")
	fs.StringVar(&f.hexIn, "hex", "", "input dataset as TLV hex")
	fs.StringVar(&f.jsonIn, "json", "", "input dataset as JSON")
	fs.StringVar(&f.format, "format", "json", "output format: json or hex")
	fs.StringVar(&f.networkName, "network-name", "", "set the network name")
	fs.StringVar(&f.extPanID, "ext-pan-id", "", "set the extended PAN id (16 hex digits)")
	fs.StringVar(&f.meshPrefix, "mesh-local-prefix", "", "set the mesh-local /64 prefix")
	fs.StringVar(&f.networkKey, "network-key", "", "set the network key (32 hex digits)")
	fs.BoolVar(&f.generateKey, "generate-key", false, "set a random network key")
	fs.StringVar(&f.passphrase, "passphrase", "", "derive and set the PSKc from this commissioning passphrase")
	f.channel = uintFlag(fs, "channel", 16, "set the channel")
	f.panID = uintFlag(fs, "pan-id", 16, "set the PAN id")

	return &ffcli.Command{
		Name:       "thread-dataset",
		ShortUsage: "matter-schema thread-dataset [-hex H | -json J] [flags]",
		ShortHelp:  "parse, convert and fill in a Thread operational dataset",
		LongHelp: "Without -hex or -json the dataset starts from the defaults " +
			"(channel mask, security policy). Setter flags are applied before the PSKc is derived.",
		FlagSet: fs,
		Options: []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			if err := a.setupLogging(); err != nil {
				return err
			}
			ds, err := f.build()
			if err != nil {
				return err
			}
			return a.writeDataset(ds, f.format)
		},
	}
}

func (f *datasetFlags) build() (*threaddataset.Dataset, error) {
	var ds *threaddataset.Dataset
	switch {
	case f.hexIn != "" && f.jsonIn != "":
		return nil, errors.New("-hex and -json are exclusive")
	case f.hexIn != "":
		parsed, err := threaddataset.ParseHex(f.hexIn)
		if err != nil {
			return nil, err
		}
		ds = parsed
	case f.jsonIn != "":
		ds = threaddataset.New()
		if err := ds.UnmarshalJSON([]byte(f.jsonIn)); err != nil {
			return nil, err
		}
	default:
		ds = threaddataset.New()
	}

	if f.networkName != "" {
		if err := ds.SetNetworkName(f.networkName); err != nil {
			return nil, err
		}
	}
	if f.extPanID != "" {
		if err := ds.SetExtPanIDHex(f.extPanID); err != nil {
			return nil, err
		}
	}
	if f.meshPrefix != "" {
		if err := ds.SetMeshLocalPrefixString(f.meshPrefix); err != nil {
			return nil, err
		}
	}
	if f.channel.set {
		ds.SetChannel(uint16(f.channel.value))
	}
	if f.panID.set {
		ds.SetPanID(uint16(f.panID.value))
	}
	switch {
	case f.networkKey != "" && f.generateKey:
		return nil, errors.New("-network-key and -generate-key are exclusive")
	case f.networkKey != "":
		if err := ds.SetNetworkKeyHex(f.networkKey); err != nil {
			return nil, err
		}
	case f.generateKey:
		key, err := threaddataset.GenerateNetworkKey(nil)
		if err != nil {
			return nil, err
		}
		if err := ds.SetNetworkKey(key); err != nil {
			return nil, err
		}
	}

	if f.passphrase != "" {
		name, ok := ds.NetworkName()
		if !ok {
			return nil, errors.New("deriving the PSKc needs a network name")
		}
		ext, ok := ds.ExtPanID()
		if !ok {
			return nil, errors.New("deriving the PSKc needs an extended PAN id")
		}
		pskc, err := threaddataset.GeneratePSKc(f.passphrase, name, hex.EncodeToString(ext))
		if err != nil {
			return nil, err
		}
		if err := ds.SetPSKc(pskc); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (a *app) writeDataset(ds *threaddataset.Dataset, format string) error {
	switch format {
	case "hex":
		s, err := ds.Hex()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, s)
	case "json":
		js, err := ds.MarshalJSON()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, js, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if _, err := buf.WriteTo(a.out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	a.log.Debugf("dataset: %s", ds)
	return nil
}
