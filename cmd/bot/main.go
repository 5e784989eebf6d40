// Package main is the entrypoint of the compliment bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edgard/complimentbot/internal/bot"
	"github.com/edgard/complimentbot/internal/bot/commands"
	"github.com/edgard/complimentbot/internal/bot/tasks"
	"github.com/edgard/complimentbot/internal/config"
	"github.com/edgard/complimentbot/internal/database"
	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/gateway/discord"
	"github.com/edgard/complimentbot/internal/gateway/telegram"
	"github.com/edgard/complimentbot/internal/logger"
	"github.com/edgard/complimentbot/internal/selector"
)

const defaultConfigPath = "./config.yaml"

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the chat platform and serve commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}

	root := &cobra.Command{
		Use:           "complimentbot",
		Short:         "A chat bot that hands out compliments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")

	root.AddCommand(runCmd)
	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}
			cmd.Printf("Configuration OK: platform=%s compliments=%d keywords=%d prefix=%q\n",
				cfg.Platform, len(cfg.Compliments), len(cfg.KeywordResponses), cfg.CommandPrefix)
			return nil
		},
	})

	return root
}

// run wires every component and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogJSON)
	log.Info("Logger initialized", "level", cfg.LogLevel, "json", cfg.LogJSON, "platform", cfg.Platform)

	startTime := time.Now()
	sel := selector.New()

	var (
		store database.Store
		gw    gateway.Gateway
	)
	switch cfg.Platform {
	case config.PlatformTelegram:
		db, err := database.NewDB(cfg.DatabasePath, log)
		if err != nil {
			log.Error("Failed to open roster database", "path", cfg.DatabasePath, "error", err)
			return err
		}
		defer database.CloseDB(db, log)
		store = database.NewStore(db, log)

		if gw, err = telegram.New(cfg.BotToken, store, log); err != nil {
			log.Error("Failed to create Telegram gateway", "error", err)
			return err
		}
	default:
		if gw, err = discord.New(cfg.BotToken, cfg.Metadata.InvitePermissions, log); err != nil {
			log.Error("Failed to create Discord gateway", "error", err)
			return err
		}
	}

	router := commands.RegisterAllCommands(commands.Deps{
		Logger:   log,
		Config:   cfg,
		Selector: sel,
		Process:  commands.ProcessContext{StartTime: startTime},
	})
	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Gateway:  gw,
		Selector: sel,
		Store:    store,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	log.Info("Starting bot")
	if err := bot.NewBot(log, cfg, gw, router, sched).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped due to error", "error", err)
		return fmt.Errorf("bot stopped: %w", err)
	}

	log.Info("Bot stopped gracefully")
	return nil
}
