package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
)

func newReplayCmd(opts *globalOptions) *cobra.Command {
	var (
		quitKey string
		stats   bool
	)

	replayCmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Drive bindings from a key script",
		Long: `Replay key events from a script file against the configured bindings.

Each line of the script is one step:

  down ctrl        press a key
  up ctrl          release a key
  tap ctrl+alt+z   press keys in order, release in reverse
  wait 50ms        pause
  reset            forget every held key

Blank lines and lines starting with '#' are ignored.

Examples:
  keychord replay -c keychord.toml session.keys
  keychord replay -c keychord.toml --stats session.keys`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			script, err := source.LoadScript(args[0])
			if err != nil {
				return err
			}

			logOut, closeLog, err := opts.openLog(c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			application, err := app.New(app.Options{
				ConfigPath: opts.configPath,
				QuitKey:    quitKey,
				Output:     c.OutOrStdout(),
				LogOutput:  logOut,
			})
			if err != nil {
				return err
			}
			defer application.Shutdown()

			c.SetContext(logging.WithContext(c.Context(), application.Logger()))
			log := logging.FromContext(c.Context())
			log.Debug().Str("script", args[0]).Int("steps", len(script.Steps())).Msg("replaying script")

			if err := application.Replay(c.Context(), script); err != nil && !errors.Is(err, app.ErrQuit) {
				return err
			}

			if stats {
				return renderBindings(c.OutOrStdout(), application.Bindings())
			}
			return nil
		},
	}

	replayCmd.Flags().StringVar(&quitKey, "quit-key", "", "combo that stops the replay unless the config binds it")
	replayCmd.Flags().BoolVar(&stats, "stats", false, "print fire counts when the replay ends")
	return replayCmd
}
