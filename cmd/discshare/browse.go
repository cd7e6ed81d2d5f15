package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"discshare/internal/config"
	"discshare/internal/rendezvous"
	"discshare/internal/scan"
)

func browseCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Scan for a share server on the network and print its URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load(rootFlags.configPath)
			if err != nil {
				return err
			}
			if cfg.RendezvousHost == "" && !cfg.EnableMDNS {
				return fmt.Errorf("no rendezvous host configured and mDNS disabled; nothing to scan")
			}

			var rdv *rendezvous.Client
			if cfg.RendezvousHost != "" {
				rdv = rendezvous.NewClient(cfg.RendezvousHost, logger)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			found := make(chan string, 1)
			w := scan.NewWatcher(ctx, func() *scan.Scanner {
				return scan.NewScanner(rdv, cfg.EnableMDNS, logger)
			}, func(url string) {
				found <- url
			}, logger)

			go w.Run(ctx, time.Second)

			select {
			case url := <-found:
				fmt.Println(url)
				return nil
			case <-ctx.Done():
				return fmt.Errorf("no share server found")
			}
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = keep trying)")
	return cmd
}
