package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/transfer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import cards for a user from a JSON or .xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetInt64("owner")
		path, _ := cmd.Flags().GetString("file")

		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.Close()

		store := database.NewStore(rt.db)
		if _, err := store.GetUser(cmd.Context(), owner); err != nil {
			return fmt.Errorf("owner %d: %w", owner, err)
		}

		result, err := transfer.NewService(store, rt.log).ImportFile(cmd.Context(), owner, path)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed: %d, created: %d, updated: %d, skipped: %d\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, msg := range result.Errors {
			fmt.Fprintln(out, "  "+msg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Int64("owner", 0, "ID of the user that owns the cards")
	importCmd.Flags().String("file", "", "JSON or .xlsx file to import")
	_ = importCmd.MarkFlagRequired("owner")
	_ = importCmd.MarkFlagRequired("file")
}
