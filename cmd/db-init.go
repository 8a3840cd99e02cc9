package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dbInitCmd creates the schema. Connect applies it, so opening the store is enough.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", rt.cfg.DB.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
