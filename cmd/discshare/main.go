package main

import (
	"log"

	"github.com/spf13/cobra"

	"discshare/internal/config"
	"discshare/internal/logging"
)

var rootCmd *cobra.Command

var rootFlags struct {
	configPath string
	verbose    bool
	logFile    string
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "discshare",
		Short: "Share disc images over the LAN and discover peers sharing theirs",
	}
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.configPath,
		"config",
		config.DefaultPath,
		"path to the config file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&rootFlags.verbose,
		"verbose", "v",
		false,
		"enable debug logging",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.logFile,
		"log-file",
		"",
		"also write JSON logs to this file",
	)
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(rendezvousCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
}

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if rootFlags.verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		ConsoleLevel: level,
		FileLocation: rootFlags.logFile,
		FileLevel:    logging.LevelDebug,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
