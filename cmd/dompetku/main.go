package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/config"
)

var version = "dev"

// app carries per-invocation state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	envFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "dompetku",
		Short: "👛 Personal income and expense ledger",
		Long: `dompetku keeps a personal ledger of income and expenses grouped by
category, reports spending statistics, tracks a monthly savings target and
backs everything up to a portable JSON file.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/dompetku/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("db", "", "path to the ledger database")
	flags.String("backend", "", "storage backend (sqlite, memory)")

	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(config.KeyDatabasePath, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyBackend, flags.Lookup("backend"))

	rootCmd.AddCommand(categoriesCmd(a))
	rootCmd.AddCommand(transactionsCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(savingsCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(importOFXCmd(a))
	rootCmd.AddCommand(resetCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx := cli.NewInterruptHandler(os.Stderr).HandleInterrupts(context.Background())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(userMessage(err)))
		os.Exit(1)
	}
}

// userMessage keeps the friendly part of a UserError and logs the cause.
func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		slog.Debug("command failed", "error", err)
		return userErr.UserMessage
	}
	return err.Error()
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", a.envFile, err)
		}
	}

	// Unchanged flags rank below these defaults, so empty flag defaults are safe.
	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(config.ExpandPath(a.cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		a.v.AddConfigPath(fmt.Sprintf("%s/.config/dompetku", home))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	config.BindEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := common.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded", "backend", cfg.Backend, "database", cfg.DatabasePath, "config_file", a.v.ConfigFileUsed())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dompetku %s\n", version)
		},
	}
}
