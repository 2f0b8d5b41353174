package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		quitKey string
		watch   bool
		stats   bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Read keys from the terminal and fire bindings",
		Long: `Read keys from the terminal and fire bindings until a quit action runs.

The terminal reports one event per keystroke, so each keystroke is treated
as pressing its modifiers and key together and releasing them right after.
Output from print actions is shown once the terminal is restored.

Examples:
  keychord run -c keychord.toml
  keychord run -c keychord.toml --quit-key ctrl+q --log-file keychord.log`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			// The screen owns the terminal while running, so logs default to nowhere.
			logOut, closeLog, err := opts.openLog(io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			var out bytes.Buffer
			application, err := app.New(app.Options{
				ConfigPath: opts.configPath,
				QuitKey:    quitKey,
				Watch:      watch,
				Output:     &out,
				LogOutput:  logOut,
			})
			if err != nil {
				return err
			}
			defer application.Shutdown()

			c.SetContext(logging.WithContext(c.Context(), application.Logger()))

			term, err := source.NewTerminal()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = application.RunTerminal(ctx, term)
			if _, werr := c.OutOrStdout().Write(out.Bytes()); werr != nil && err == nil {
				err = werr
			}
			if errors.Is(err, app.ErrQuit) || errors.Is(err, context.Canceled) {
				err = nil
			}
			if err != nil {
				return err
			}

			if stats {
				return renderBindings(c.OutOrStdout(), application.Bindings())
			}
			return nil
		},
	}

	runCmd.Flags().StringVar(&quitKey, "quit-key", app.DefaultQuitKey, "combo that always quits unless the config binds it")
	runCmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the config file when it changes")
	runCmd.Flags().BoolVar(&stats, "stats", false, "print fire counts on exit")
	return runCmd
}
