package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plistrc/internal/obslog"
)

var (
	flagDebug bool
	logger    *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "plistrc",
		Short:         "Decode NSKeyedArchiver property lists and extract plist schemas",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := obslog.New(flagDebug)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newExtractCmd())
	return root
}
