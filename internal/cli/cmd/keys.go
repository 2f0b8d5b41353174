package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/input/key"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List key names accepted in combos",
		Long: `List every key name accepted in a combo, with its key code and class.

Names are case-insensitive. Aliases such as "control" or "esc" are also
accepted, and any code can be written as "#n".`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			entries := key.Table()
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Name, strconv.Itoa(int(e.Code)), e.Code.Class()}
			}
			return renderTable(c.OutOrStdout(), []string{"NAME", "CODE", "CLASS"}, rows)
		},
	}
}
