package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/AskSQL/internal/schema"
)

var schemaOverview bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description given to the model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := schema.Northwind()
		if schemaOverview {
			fmt.Fprint(cmd.OutOrStdout(), catalog.Overview())
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), catalog.ToText())
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaOverview, "overview", false, "print the one-line-per-table overview used for summaries")
	rootCmd.AddCommand(schemaCmd)
}
