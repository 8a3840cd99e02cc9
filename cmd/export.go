package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's cards to a JSON or .xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetInt64("owner")
		path, _ := cmd.Flags().GetString("file")

		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := transfer.NewService(database.NewStore(rt.db), rt.log).ExportFile(cmd.Context(), owner, path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d cards to %s\n", n, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Int64("owner", 0, "ID of the user that owns the cards")
	exportCmd.Flags().String("file", "cards.json", "destination file, .json or .xlsx")
	_ = exportCmd.MarkFlagRequired("owner")
}
