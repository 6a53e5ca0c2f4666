package root

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docker/explainer/pkg/httpclient"
	"github.com/docker/explainer/pkg/relay"
	"github.com/docker/explainer/pkg/server"
)

type relayFlags struct {
	configPath  string
	listenAddr  string
	model       string
	baseURL     string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func newRelayCmd() *cobra.Command {
	var flags relayFlags

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Start the relay server",
		Long: `Start the HTTP relay that readers call for explanations. The relay holds the model
credentials (OPENAI_API_KEY) and forwards each request to an OpenAI-compatible
chat completion endpoint.

The listen address accepts host:port, unix://<path> or fd://<n>.`,
		Args: cobra.NoArgs,
		RunE: flags.runRelayCommand,
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Relay config file (YAML)")
	cmd.Flags().StringVarP(&flags.listenAddr, "listen", "l", relay.DefaultListen, "Address to listen on")
	cmd.Flags().StringVar(&flags.model, "model", relay.DefaultModel, "Model name")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "OpenAI-compatible API base URL (default: $OPENAI_BASE_URL or "+relay.DefaultBaseURL+")")
	cmd.Flags().Int64Var(&flags.maxTokens, "max-tokens", relay.DefaultMaxTokens, "Maximum tokens per explanation")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", relay.DefaultTemperature, "Sampling temperature")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", relay.DefaultTimeout, "Timeout for each model call")

	return cmd
}

// resolve merges the config file with the flags the user set explicitly.
func (f *relayFlags) resolve(cmd *cobra.Command) (*relay.Config, error) {
	cfg, err := relay.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = f.listenAddr
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if flags.Changed("temperature") {
		cfg.Temperature = &f.temperature
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout.String()
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *relayFlags) runRelayCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}
	timeout, _ := cfg.TimeoutDuration()

	mc := cfg.ModelConfig(os.Getenv)
	explainer, err := relay.NewModelExplainer(mc, httpclient.NewHTTPClient(httpclient.WithModel(mc.Model)))
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr()
	ln, err := server.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Listening on "+ln.Addr().String())
	slog.Info("Relay started", "addr", ln.Addr().String(), "model", mc.Model, "base_url", mc.BaseURL, "timeout", timeout)

	return server.New(explainer, server.WithTimeout(timeout)).Serve(ctx, ln)
}
