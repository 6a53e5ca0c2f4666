package root

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/docker/explainer/pkg/httpclient"
	"github.com/docker/explainer/pkg/overlay"
	"github.com/docker/explainer/pkg/paths"
	"github.com/docker/explainer/pkg/relay"
	"github.com/docker/explainer/pkg/speech"
	"github.com/docker/explainer/pkg/tui"
	"github.com/docker/explainer/pkg/tui/components/document"
	"github.com/docker/explainer/pkg/userconfig"
)

const relayURLEnv = "EXPLAINER_RELAY_URL"

// maxDocumentSize bounds what the reader loads into memory.
const maxDocumentSize = 8 << 20

type readFlags struct {
	relayURL    string
	relayConfig string
	theme       string
	searchURL   string
	prefsPath   string
	noSpeech    bool
	timeout     time.Duration
}

func newReadCmd() *cobra.Command {
	var flags readFlags

	cmd := &cobra.Command{
		Use:   "read <file>|-",
		Short: "Open a document and explain selected text",
		Long: `Open a text or markdown document in the terminal. Select text with the mouse,
then click the "? Explain" button that appears to get a plain-language explanation.

Explanations come from the relay at --relay-url. Without a relay, the reader calls
the model directly using OPENAI_API_KEY and the optional relay config file.`,
		Example: `  explainer read notes.md
  cat notes.txt | explainer read -
  explainer read --relay-url http://127.0.0.1:8787 notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: flags.runReadCommand,
	}

	cmd.Flags().StringVar(&flags.relayURL, "relay-url", "", "Relay server URL (default: $"+relayURLEnv+" or relay_url from preferences)")
	cmd.Flags().StringVar(&flags.relayConfig, "relay-config", "", "Relay config file used when calling the model directly")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "Overlay theme: auto, light or dark (default: stored preference)")
	cmd.Flags().StringVar(&flags.searchURL, "search-url", "", "Read-more link pattern; %s receives the selected text")
	cmd.Flags().StringVar(&flags.prefsPath, "prefs", "", "Preferences file (default: ~/.config/explainer/prefs.yaml)")
	cmd.Flags().BoolVar(&flags.noSpeech, "no-speech", false, "Disable text-to-speech")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", relay.DefaultTimeout, "Timeout for each explanation request")
	_ = cmd.Flags().MarkHidden("prefs")

	return cmd
}

func (f *readFlags) runReadCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if f.theme != "" && !validTheme(f.theme) {
		return fmt.Errorf("invalid theme %q: must be auto, light or dark", f.theme)
	}

	name, content, err := readDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	store := userconfig.NewStore(f.prefsPath)
	prefs, err := store.Load()
	if err != nil {
		slog.Warn("Ignoring unreadable preferences", "path", store.Path(), "error", err)
		prefs = &userconfig.Config{}
	}

	explainer, err := f.newExplainer(prefs)
	if err != nil {
		return err
	}

	var engine speech.Engine = speech.Unsupported{}
	if !f.noSpeech {
		engine = speech.Detect()
	}

	m := tui.New(document.New(name, content), overlay.Options{
		Explainer:    explainer,
		Speech:       engine,
		Themes:       store,
		Theme:        overlay.ParseThemePref(cmp.Or(f.theme, prefs.Theme)),
		SearchURL:    cmp.Or(f.searchURL, prefs.SearchURL),
		FetchTimeout: f.timeout,
	})

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if args[0] == "-" {
		// The document came from stdin; read keys from the terminal instead.
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		defer tty.Close()
		progOpts = append(progOpts, tea.WithInput(tty))
	}
	p := tea.NewProgram(m, progOpts...)

	watcher := userconfig.NewWatcher(store.Path(), f.prefsChanged(p.Send))
	if err := watcher.Start(); err != nil {
		slog.Debug("Not watching preferences", "error", err)
	}
	defer watcher.Stop()

	slog.Debug("Starting reader", "document", name, "theme", prefs.Theme)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// prefsChanged forwards theme changes made by other instances. An explicit
// --theme stays in effect for the whole session.
func (f *readFlags) prefsChanged(send func(tea.Msg)) func(*userconfig.Config) {
	return func(c *userconfig.Config) {
		if f.theme != "" {
			slog.Debug("Ignoring stored theme change", "stored", c.Theme, "flag", f.theme)
			return
		}
		send(overlay.ThemePrefChangedMsg{Pref: overlay.ParseThemePref(c.Theme)})
	}
}

// newExplainer picks the relay client when a relay URL is configured and
// the in-process model explainer otherwise.
func (f *readFlags) newExplainer(prefs *userconfig.Config) (overlay.Explainer, error) {
	if relayURL := cmp.Or(f.relayURL, os.Getenv(relayURLEnv), prefs.RelayURL); relayURL != "" {
		slog.Debug("Using relay", "url", relayURL)
		return relay.NewClient(relayURL, httpclient.NewHTTPClient(httpclient.WithTimeout(f.timeout))), nil
	}

	cfg, err := relay.LoadConfig(f.relayConfig)
	if err != nil {
		return nil, err
	}
	mc := cfg.ModelConfig(os.Getenv)
	explainer, err := relay.NewModelExplainer(mc, httpclient.NewHTTPClient(httpclient.WithModel(mc.Model)))
	if err != nil {
		return nil, fmt.Errorf("no relay configured (use --relay-url or $%s) and cannot call the model directly: %w", relayURLEnv, err)
	}
	return explainer, nil
}

func readDocument(arg string, stdin io.Reader) (name, content string, err error) {
	if arg == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, maxDocumentSize+1))
		if err != nil {
			return "", "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		if len(data) > maxDocumentSize {
			return "", "", fmt.Errorf("stdin is too large (more than %d bytes)", maxDocumentSize)
		}
		return "stdin", string(data), nil
	}

	path, err := paths.ExpandTilde(arg)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%s is a directory", arg)
	}
	if info.Size() > maxDocumentSize {
		return "", "", fmt.Errorf("%s is too large (%d bytes)", arg, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, string(data), nil
}

func validTheme(theme string) bool {
	switch overlay.ThemePref(theme) {
	case overlay.ThemeAuto, overlay.ThemeLight, overlay.ThemeDark:
		return true
	}
	return false
}
