package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/telegram"
	"signal-trading-bot/internal/webhook"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "bot",
		Short: "Signal-driven equity trading bot",
		Long: `bot receives BUY/SELL signals over a webhook, checks them against
per-symbol trading parameters and the brokerage account, and places
resting limit orders when the rules allow it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeSystem()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownSystem()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(signalCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(journalCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook listener and the Telegram dialogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var bot *telegram.Bot
	if a.cfg.Telegram.Enabled {
		if bot, err = initializeTelegram(a.cfg, a.updater, a.store); err != nil {
			return err
		}
	}

	errCh := make(chan error, 2)

	srv := webhook.New(a.dispatcher, webhook.Options{
		Addr:  a.cfg.Webhook.Addr,
		Path:  a.cfg.Webhook.Path,
		Async: a.cfg.WebhookAsync(),
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("webhook listener: %w", err)
		}
	}()

	if bot != nil {
		go func() {
			if err := bot.Run(ctx); err != nil {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	} else {
		logger.Info(ctx, "Telegram dialogue disabled; use 'bot config set' to configure tickers")
	}

	if a.cfg.Eod.Enabled {
		go runEOD(ctx, a)
	}

	logger.Info(ctx, "Bot started", "mode", a.cfg.Mode, "broker", a.cfg.Broker)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutdown signal received")
	case runErr = <-errCh:
		logger.ErrorWithErr(context.Background(), "Component stopped", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "Webhook shutdown incomplete", "error", err)
	}
	if a.cfg.Eod.Enabled {
		if _, err := a.eod.SummarizeDay(shutdownCtx, time.Now()); err != nil {
			logger.Warn(shutdownCtx, "Final EOD summary failed", "error", err)
		}
	}
	logger.Info(shutdownCtx, "Bot stopped")
	return runErr
}

// runEOD writes the journal summary once per day after the cutoff.
func runEOD(ctx context.Context, a *app) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if ok, _ := a.eod.ShouldRunNow(now); ok {
				_, _ = a.eod.SummarizeDay(ctx, now)
			}
		}
	}
}

func signalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signal SYMBOL ACTION",
		Short: "Evaluate a single BUY/SELL signal and print the outcome",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out := a.dispatcher.Dispatch(cmd.Context(), args[0], args[1])
			return printJSON(cmd, out)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage per-symbol trading parameters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set SYMBOL ORDER_SIZE MIN_PROFIT_PCT",
		Short: "Store the order size and minimum profit for a symbol",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.ConfigStore.Driver == "MEMORY" {
				logger.Warn(cmd.Context(), "config_store.driver is MEMORY; this setting is lost when the command exits")
			}
			cfg, err := a.updater.Configure(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd, cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every stored trading config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd, a.store.All())
		},
	})

	return cmd
}

func journalCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Work with the daily order journal",
	}

	summarize := &cobra.Command{
		Use:   "summarize",
		Short: "Write the per-symbol CSV summary for a UTC day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = d
			}

			cfg, err := loadConfig(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			path, err := initializeEOD(cfg).SummarizeDay(cmd.Context(), day)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders journaled for", day.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	summarize.Flags().StringVar(&date, "date", "", "Day to summarize as YYYY-MM-DD (default today, UTC)")
	cmd.AddCommand(summarize)

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}
