package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/internal/database"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linguabot",
	Short: "Telegram bot for learning words with spaced repetition",
	Long: `linguabot keeps a personal set of word cards for every chat, schedules
reviews with a spaced repetition policy and runs short exercises over Telegram.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every command needs: config, logger and an open store
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sqlx.DB
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	logger.Debug("database ready", zap.String("driver", cfg.DB.Driver))

	return &app{cfg: cfg, log: logger, db: db}, nil
}

func (r *app) Close() {
	if err := r.db.Close(); err != nil {
		r.log.Warn("failed to close database", zap.Error(err))
	}
	_ = r.log.Sync()
}
