// Package cli wires the storefront commands: the HTTP API, schema
// migration and the order event consumer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "storefront",
		Short: "Storefront API: accounts, catalog, coupons and checkout",
		Long: `storefront serves the shop's JSON API backed by MySQL, Redis, Stripe
and RabbitMQ. Configuration is read from the environment and an optional
.env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newConsumeOrdersCmd())
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
