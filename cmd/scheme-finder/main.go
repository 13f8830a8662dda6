// cmd/scheme-finder/main.go
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	configPath string
	stdin      io.Reader
	stdout     io.Writer
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	opts := &cliOptions{stdin: stdin, stdout: stdout}

	root := &cobra.Command{
		Use:           "scheme-finder",
		Short:         "Extract applicant profiles and discover matching welfare schemes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: configs/config.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newExtractCmd(opts),
		newDiscoverCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
