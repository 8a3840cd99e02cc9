package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/bot"
	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/exercise"
	"github.com/example/linguabot/internal/scheduler"
	"github.com/example/linguabot/internal/session"
)

// remindCmd sends one reminder immediately, ignoring the configured time
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send a due-cards reminder to one chat now",
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, _ := cmd.Flags().GetInt64("chat")

		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.cfg.RequireBotToken(); err != nil {
			return err
		}

		store := database.NewStore(rt.db)
		stats, err := store.GetUserStats(cmd.Context(), chatID)
		if err != nil {
			return fmt.Errorf("chat %d: %w", chatID, err)
		}

		api, err := bot.NewTelegramAPI(rt.cfg.BotToken, rt.cfg.Env)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		engine := exercise.NewEngine(store, session.NewRegistry(rt.log), rt.log)
		sched := scheduler.New(store, bot.New(api, engine, rt.log), rt.log)

		sent, err := sched.RunManualCheck(cmd.Context(), stats)
		if err != nil {
			return fmt.Errorf("remind: %w", err)
		}
		if sent {
			fmt.Fprintln(cmd.OutOrStdout(), "reminder sent")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().Int64("chat", 0, "Telegram chat ID")
	_ = remindCmd.MarkFlagRequired("chat")
}
