package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"discshare/internal/config"
	"discshare/internal/logging"
	"discshare/internal/rendezvous"
	"discshare/internal/share"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the share server and run until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load(rootFlags.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			var rdv *rendezvous.Client
			if cfg.RendezvousHost != "" {
				rdv = rendezvous.NewClient(cfg.RendezvousHost, logger)
			} else {
				logger.Warn("no rendezvous host configured, peers must browse via mDNS or manual entry")
			}

			srv := share.NewServer(share.Options{
				Files:        cfg.Files,
				Port:         cfg.Port,
				Rendezvous:   rdv,
				AnnounceMDNS: cfg.EnableMDNS,
				OnBound: func(bound int) {
					// Persist the bound port so the next run (and
					// anyone reading the config) sees the real one.
					cfg.Port = bound
					if err := cfg.Save(rootFlags.configPath); err != nil {
						logger.Warn("could not persist bound port", logging.Err(err))
					}
				},
			}, logger)

			if err := srv.Start(); err != nil {
				return err
			}
			if !srv.WaitFor(share.Running, 5*time.Second) {
				logger.Error("server failed to start")
				return nil
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			if err := srv.Stop(); err == nil {
				srv.WaitFor(share.Stopped, 10*time.Second)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config; 0 = ephemeral)")
	return cmd
}
