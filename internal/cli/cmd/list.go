package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/config"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured bindings",
		Long: `List the bindings loaded from the configuration file.

Bindings whose keys name the same set are merged; the last one wins.

Examples:
  keychord list -c keychord.toml
  keychord list -c keychord.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			logOut, closeLog, err := opts.openLog(c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			application, err := app.New(app.Options{
				ConfigPath: opts.configPath,
				LogOutput:  logOut,
			})
			if err != nil {
				return err
			}
			defer application.Shutdown()

			bindings := application.Bindings()
			if !asJSON {
				return renderBindings(c.OutOrStdout(), bindings)
			}

			doc, err := bindingsJSON(application.Config(), bindings)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), doc)
			return err
		},
	}

	listCmd.Flags().BoolVar(&asJSON, "json", false, "print bindings as JSON")
	return listCmd
}

// bindingsJSON renders bindings as {"count": n, "bindings": [...]}, with
// the effective logging settings of cfg under "logging" when cfg is set.
func bindingsJSON(cfg *config.Config, bindings []app.BindingInfo) (string, error) {
	doc := `{"count":0,"bindings":[]}`
	var err error

	if cfg != nil {
		if doc, err = sjson.Set(doc, "logging.level", cfg.Logging.Level); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, "logging.format", cfg.Logging.Format); err != nil {
			return "", err
		}
	}

	for _, b := range bindings {
		obj := `{}`
		fields := []struct {
			path  string
			value any
		}{
			{"name", b.Name},
			{"keys", b.Keys},
			{"action", b.Action},
			{"fires", b.Fires},
		}
		for _, f := range fields {
			if obj, err = sjson.Set(obj, f.path, f.value); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "bindings.-1", obj); err != nil {
			return "", err
		}
	}

	return sjson.Set(doc, "count", len(bindings))
}
