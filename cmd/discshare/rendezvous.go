package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"discshare/internal/logging"
	"discshare/internal/rendezvous"
)

func rendezvousCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "rendezvous",
		Short: "Self-host the match service that pairs servers with browsers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			svc := rendezvous.NewService(logger)

			stop := make(chan struct{})
			go svc.Sweep(time.Minute, stop)

			srv := &http.Server{Addr: listen, Handler: svc.Router()}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("match service listening", logging.String("addr", listen))
				errCh <- srv.ListenAndServe()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				close(stop)
				return err
			case <-quit:
				close(stop)
				return srv.Close()
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8380", "address to listen on")
	return cmd
}
