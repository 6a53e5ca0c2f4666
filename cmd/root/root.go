package root

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docker/explainer/pkg/logging"
	"github.com/docker/explainer/pkg/paths"
)

type rootFlags struct {
	debugMode   bool
	logFilePath string
	logFile     io.Closer
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "explainer",
		Short: "explainer - explain selected text",
		Long:  "explainer opens a document in the terminal and explains any text you select with the mouse",
		Example: `  explainer notes.md
  explainer read --relay-url http://127.0.0.1:8787 notes.md
  explainer relay --listen 127.0.0.1:8787`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if flags.logFile != nil {
				if err := flags.logFile.Close(); err != nil {
					slog.Error("Failed to close log file", "error", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFilePath, "log-file", "", "Path to debug log file (default: ~/.explainer/explainer.debug.log; only used with --debug)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newRelayCmd())
	cmd.AddCommand(newPingCmd())

	return cmd
}

func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetContext(ctx)

	// When no subcommand is given, default to "read".
	rootCmd.SetArgs(defaultToRead(rootCmd, args))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return processErr(ctx, err, stderr, rootCmd)
	}
	return nil
}

// defaultToRead prepends "read" to the argument list when no subcommand is
// specified so that "explainer notes.md" opens the reader. Help flags are
// left alone.
func defaultToRead(rootCmd *cobra.Command, args []string) []string {
	for _, arg := range args {
		switch {
		case arg == "--":
			return append([]string{"read"}, args...)
		case arg == "--help" || arg == "-h":
			return args
		case arg == "-":
			return append([]string{"read"}, args...)
		case strings.HasPrefix(arg, "-"):
			continue
		case isSubcommand(rootCmd, arg):
			return args
		default:
			return append([]string{"read"}, args...)
		}
	}

	// Only flags: show help rather than a reader with no document.
	return args
}

// isSubcommand reports whether name matches a registered subcommand or alias.
func isSubcommand(cmd *cobra.Command, name string) bool {
	switch name {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return true
		}
	}
	return false
}

func processErr(ctx context.Context, err error, stderr io.Writer, rootCmd *cobra.Command) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fmt.Fprintln(stderr, err)
	if strings.HasPrefix(err.Error(), "unknown command ") || strings.HasPrefix(err.Error(), "accepts ") {
		fmt.Fprintln(stderr)
		_ = rootCmd.Usage()
	}
	return err
}

// setupLogging configures slog. The reader owns the terminal, so it only
// logs to a rotating file, and only with --debug. The relay logs to stderr
// and additionally to --log-file when given.
func (f *rootFlags) setupLogging(cmd *cobra.Command) error {
	opts := logging.Options{Debug: f.debugMode}

	switch cmd.Name() {
	case "relay":
		opts.Console = cmd.ErrOrStderr()
		opts.File = strings.TrimSpace(f.logFilePath)
	case "read":
		if f.debugMode {
			opts.File = cmp.Or(strings.TrimSpace(f.logFilePath), filepath.Join(paths.GetDataDir(), "explainer.debug.log"))
		}
	default:
		opts.Console = cmd.ErrOrStderr()
	}

	closer, err := logging.Setup(opts)
	if err != nil {
		// Fall back to stderr so we still get logs.
		_, _ = logging.Setup(logging.Options{Debug: f.debugMode, Console: cmd.ErrOrStderr()})
		slog.Warn("Failed to open log file", "error", err)
		return nil
	}
	f.logFile = closer
	return nil
}
