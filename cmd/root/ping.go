package root

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docker/explainer/pkg/httpclient"
	"github.com/docker/explainer/pkg/relay"
	"github.com/docker/explainer/pkg/userconfig"
)

func newPingCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping [relay-url]",
		Short: "Check that a relay server is reachable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var relayURL string
			if len(args) == 1 {
				relayURL = args[0]
			}
			if relayURL == "" {
				relayURL = os.Getenv(relayURLEnv)
			}
			if relayURL == "" {
				if prefs, err := userconfig.Load(); err == nil {
					relayURL = prefs.RelayURL
				}
			}
			relayURL = cmp.Or(relayURL, "http://"+relay.DefaultListen)

			client := relay.NewClient(relayURL, httpclient.NewHTTPClient(httpclient.WithTimeout(timeout)))
			if err := client.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("relay at %s is not reachable: %w", relayURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relay at %s is up\n", relayURL)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")

	return cmd
}
