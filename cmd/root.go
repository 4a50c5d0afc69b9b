package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/applog/cmd/emit"
	"github.com/tphakala/applog/cmd/pipe"
	"github.com/tphakala/applog/cmd/purge"
	"github.com/tphakala/applog/cmd/query"
	"github.com/tphakala/applog/cmd/tail"
	"github.com/tphakala/applog/cmd/version"
	"github.com/tphakala/applog/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "applog",
		Short:        "Structured application logging CLI",
		Long:         "applog writes structured events to the console, a log file and a database, and reads them back.",
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	cobra.CheckErr(setupFlags(rootCmd, ctx))

	rootCmd.AddCommand(
		emit.Command(ctx),
		pipe.Command(ctx),
		tail.Command(ctx),
		query.Command(ctx),
		purge.Command(ctx),
		version.Command(ctx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Load()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.WriteMetrics()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface and
// binds them to the settings keys they override.
func setupFlags(rootCmd *cobra.Command, ctx *app.Context) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/applog, /etc/applog)")
	flags.StringP("env", "e", "", "Runtime environment: development, production, staging, test")
	flags.String("log-dir", "", "Directory holding <environment>.log")
	flags.String("database-url", "", "Log store connection string, e.g. sqlite://applog.db")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	bindings := map[string]string{
		"environment":      "env",
		"log.dir":          "log-dir",
		"database.url":     "database-url",
		"metrics.textfile": "metrics-textfile",
	}
	for key, flag := range bindings {
		if err := ctx.Viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
