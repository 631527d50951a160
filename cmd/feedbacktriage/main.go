// feedbacktriage triages customer feedback from support emails and app store
// reviews into structured tickets.
//
// Usage:
//
//	feedbacktriage process [--config=<path>] [--reviews=<csv>] [--emails=<csv>]
//	feedbacktriage review <ticket-id> --action=<approve|reject|edit> --reviewer=<name> [edit flags]
//	feedbacktriage export [--config=<path>]
//	feedbacktriage watch [--config=<path>] [--schedule=<cron>]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feedbacktriage/internal/storage"
	"feedbacktriage/pkg/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "feedbacktriage",
	Short: "Triage customer feedback into structured tickets",
	Long: "feedbacktriage classifies support emails and app store reviews,\n" +
		"extracts technical details, assigns priorities and creates tickets\n" +
		"for human review.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// openStore picks the storage backend from config. The memory store backs
// one-shot runs; postgres or sqlite keep tickets across invocations.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return storage.NewPostgresStore(storage.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Database.Path)
	default:
		return storage.NewMemoryStore(), nil
	}
}
