package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/bot"
	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/exercise"
	"github.com/example/linguabot/internal/scheduler"
	"github.com/example/linguabot/internal/session"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Telegram bot and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.cfg.RequireBotToken(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := database.NewStore(rt.db)
		sessions := session.NewRegistry(rt.log, session.WithTTL(rt.cfg.Session.TTL))
		engine := exercise.NewEngine(store, sessions, rt.log)

		api, err := bot.NewTelegramAPI(rt.cfg.BotToken, rt.cfg.Env)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		b := bot.New(api, engine, rt.log)

		if rt.cfg.Reminder.Enabled {
			loc, err := rt.cfg.Location()
			if err != nil {
				return err
			}
			sched := scheduler.New(store, b, rt.log,
				scheduler.WithLocation(loc),
				scheduler.WithSweeper(sessions),
			)
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			defer sched.Stop()
		} else {
			rt.log.Info("reminders disabled")
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)

		go func() {
			<-ctx.Done()
			rt.log.Info("shutting down")
			api.StopReceivingUpdates()
		}()

		rt.log.Info("bot started", zap.String("username", api.Self.UserName))
		b.Run(ctx, updates)
		rt.log.Info("bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
