package root

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docker/explainer/pkg/overlay"
	"github.com/docker/explainer/pkg/relay"
	"github.com/docker/explainer/pkg/server"
	"github.com/docker/explainer/pkg/userconfig"
)

func TestDefaultToRead(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "no args shows help", args: []string{}, want: []string{}},
		{name: "only flags shows help", args: []string{"--debug"}, want: []string{"--debug"}},
		{name: "known subcommand kept as-is", args: []string{"version"}, want: []string{"version"}},
		{name: "read kept as-is", args: []string{"read", "notes.md"}, want: []string{"read", "notes.md"}},
		{name: "relay kept as-is", args: []string{"relay", "--listen", ":9000"}, want: []string{"relay", "--listen", ":9000"}},
		{name: "help subcommand kept as-is", args: []string{"help"}, want: []string{"help"}},
		{name: "--help flag kept as-is", args: []string{"--help"}, want: []string{"--help"}},
		{name: "document defaults to read", args: []string{"notes.md"}, want: []string{"read", "notes.md"}},
		{name: "flags and document default to read", args: []string{"--debug", "notes.md"}, want: []string{"read", "--debug", "notes.md"}},
		{name: "stdin defaults to read", args: []string{"-"}, want: []string{"read", "-"}},
		{name: "debug and help still shows help", args: []string{"--debug", "--help"}, want: []string{"--debug", "--help"}},
		{name: "__complete kept as-is", args: []string{"__complete", "read", ""}, want: []string{"__complete", "read", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, defaultToRead(rootCmd, tt.args))
		})
	}
}

// Commands replace the default logger, so these tests do not run in parallel.

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Execute(t.Context(), nil, &stdout, &stderr, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "explainer version ")
	assert.Contains(t, stdout.String(), "Commit: ")
}

func TestUnknownCommandPrintsError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Execute(t.Context(), nil, &stdout, &stderr, "read")
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "accepts 1 arg(s)")
}

func TestRelayFlags_Resolve(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file\nmax_tokens: 50\ntimeout: 10s\n"), 0o644))

	cmd := newRelayCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--temperature", "0.2", "--listen", "unix:///tmp/relay.sock"}))

	var flags relayFlags
	flags.configPath = path
	flags.listenAddr, _ = cmd.Flags().GetString("listen")
	flags.temperature, _ = cmd.Flags().GetFloat64("temperature")

	cfg, err := flags.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Model, "unset flags keep the file value")
	assert.Equal(t, int64(50), cfg.MaxTokens)
	assert.Equal(t, "unix:///tmp/relay.sock", cfg.ListenAddr())
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.2, *cfg.Temperature, 0.0001)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, "10s", timeout.String())
}

func TestRelayFlags_Defaults(t *testing.T) {
	t.Parallel()

	cmd := newRelayCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := (&relayFlags{}).resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, relay.DefaultListen, cfg.ListenAddr())

	mc := cfg.ModelConfig(func(string) string { return "" })
	assert.Equal(t, relay.DefaultModel, mc.Model)
	assert.Equal(t, int64(relay.DefaultMaxTokens), mc.MaxTokens)
}

func TestReadDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n"), 0o644))

	name, content, err := readDocument(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, name)
	assert.Equal(t, "# Notes\n", content)

	name, content, err = readDocument("-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", name)
	assert.Equal(t, "from stdin", content)

	_, _, err = readDocument(dir, nil)
	assert.ErrorContains(t, err, "is a directory")

	_, _, err = readDocument(filepath.Join(dir, "missing.txt"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadDocument_StdinSizeLimit(t *testing.T) {
	t.Parallel()

	_, content, err := readDocument("-", bytes.NewReader(make([]byte, maxDocumentSize)))
	require.NoError(t, err)
	assert.Len(t, content, maxDocumentSize)

	_, _, err = readDocument("-", bytes.NewReader(make([]byte, maxDocumentSize+1)))
	assert.ErrorContains(t, err, "too large")
}

func TestPrefsChanged_ExplicitThemeWins(t *testing.T) {
	t.Parallel()

	var sent []tea.Msg
	send := func(msg tea.Msg) { sent = append(sent, msg) }

	pinned := &readFlags{theme: "dark"}
	pinned.prefsChanged(send)(&userconfig.Config{Theme: "light"})
	assert.Empty(t, sent)

	following := &readFlags{}
	following.prefsChanged(send)(&userconfig.Config{Theme: "light"})
	require.Len(t, sent, 1)
	assert.Equal(t, overlay.ThemePrefChangedMsg{Pref: overlay.ThemeLight}, sent[0])
}

func TestValidTheme(t *testing.T) {
	t.Parallel()

	for _, theme := range []string{"auto", "light", "dark"} {
		assert.True(t, validTheme(theme), theme)
	}
	assert.False(t, validTheme("solarized"))
	assert.False(t, validTheme("Dark"))
}

func TestNewExplainer_PrefersRelay(t *testing.T) {
	t.Setenv(relayURLEnv, "")
	t.Setenv("OPENAI_API_KEY", "")

	f := &readFlags{}
	explainer, err := f.newExplainer(&userconfig.Config{RelayURL: "http://127.0.0.1:8787"})
	require.NoError(t, err)
	assert.IsType(t, &relay.Client{}, explainer)

	_, err = f.newExplainer(&userconfig.Config{})
	assert.ErrorContains(t, err, "no relay configured")

	t.Setenv("OPENAI_API_KEY", "test-key")
	explainer, err = f.newExplainer(&userconfig.Config{})
	require.NoError(t, err)
	assert.IsType(t, &relay.ModelExplainer{}, explainer)
}

type staticExplainer string

func (s staticExplainer) Explain(context.Context, string) (string, error) { return string(s), nil }

func TestPingCommand(t *testing.T) {
	srv := httptest.NewServer(server.New(staticExplainer("ok")).Handler())
	t.Cleanup(srv.Close)

	var stdout, stderr bytes.Buffer
	require.NoError(t, Execute(t.Context(), nil, &stdout, &stderr, "ping", srv.URL))
	assert.Contains(t, stdout.String(), "is up")

	srv.Close()
	stdout.Reset()
	err := Execute(t.Context(), nil, &stdout, &stderr, "ping", srv.URL)
	assert.ErrorContains(t, err, "not reachable")
}
