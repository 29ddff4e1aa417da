package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"plistrc/internal/karchive"
	"plistrc/internal/plistsrc"
)

func newDecodeCmd() *cobra.Command {
	var bestEffort bool

	cmd := &cobra.Command{
		Use:   "decode <path>",
		Short: "Decode a keyed-archive plist file and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdDecode(args[0], bestEffort)
		},
	}
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "log and continue past cycle-guard drops instead of staying silent")
	return cmd
}

func cmdDecode(path string, bestEffort bool) error {
	root, err := plistsrc.Load(path)
	if err != nil {
		return errors.Wrapf(err, "decode: load %s", path)
	}

	if !karchive.IsEncoded(root) {
		return fmt.Errorf("decode: %s is not an NSKeyedArchiver envelope", path)
	}

	opts := karchive.Options{Log: logger}
	if bestEffort {
		opts.Mode = karchive.ModeBestEffort
	}

	decoded, err := karchive.Decode(root, opts)
	if err != nil {
		return errors.Wrapf(err, "decode: %s", path)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(karchive.ForJSON(decoded))
}
