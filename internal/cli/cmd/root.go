// Package cmd provides Cobra CLI commands for keychord.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo carries version details set at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logFile    string
}

// openLog returns the log destination: the --log-file if given, else fallback.
func (o *globalOptions) openLog(fallback io.Writer) (io.Writer, func(), error) {
	if o.logFile == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// NewRootCommand builds the keychord command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "keychord",
		Short: "Fire actions when keyboard combos are held",
		Long: `keychord watches key presses and fires an action whenever the set of
held keys exactly matches a configured combo.

Bindings are read from a TOML, YAML or JSON file:

  [[bindings]]
  name = "undo"
  keys = "ctrl+alt+z"
  action = "log"

Use 'keychord run' to read keys from the terminal, or 'keychord replay'
to drive the same bindings from a script file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file (toml, yaml or json)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	root.AddCommand(
		newRunCmd(opts),
		newReplayCmd(opts),
		newListCmd(opts),
		newKeysCmd(),
		newVersionCmd(info),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(info BuildInfo) int {
	if err := NewRootCommand(info).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
