package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"discshare/internal/config"
	"discshare/internal/share"
)

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add disc images to the shared list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootFlags.configPath)
			if err != nil {
				return err
			}

			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("cannot read %s: %w", path, err)
				}
				if !share.Supported(path) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: not a supported disc image\n", path)
					continue
				}
				if cfg.AddFile(path) {
					fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "already shared: %s\n", path)
				}
			}
			return cfg.Save(rootFlags.configPath)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the shared list and the URL path each file serves under",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootFlags.configPath)
			if err != nil {
				return err
			}

			for _, file := range cfg.Files {
				if share.Supported(file) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", share.PathKey(file), file)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "(skipped)\t%s\n", file)
				}
			}
			return nil
		},
	}
}
