package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/storefront/internal/config"
	"github.com/iliyamo/storefront/internal/queue"
)

func newConsumeOrdersCmd() *cobra.Command {
	var logDir string
	cmd := &cobra.Command{
		Use:   "consume-orders",
		Short: "Append order.placed events to a local log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(os.Getenv("LOG_LEVEL"), nil)
			c := &queue.Consumer{URL: config.BrokerURL(), LogDir: logDir, Log: logger}
			logger.Infof("consuming %s into %s", queue.OrderPlacedQueue, logDir)
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory for orders.log")
	return cmd
}
