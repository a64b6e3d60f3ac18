package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/safetrade/site/internal/config"
	"github.com/safetrade/site/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		noColor    bool
	)

	root := &cobra.Command{
		Use:   "safetrade",
		Short: "Serve the Safe Trade website",
		Long: `safetrade serves the Safe Trade landing page.

The page is rendered on the server; the contact form, testimonials
and FAQ stay interactive over a WebSocket, and fall back to plain
HTML forms and links without JavaScript.

Configuration is read from site.json (if present), then from
SAFETRADE_* environment variables, then from flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_, noColorEnv := os.LookupEnv("NO_COLOR")
			errors.SetColor(!noColor && !noColorEnv)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to site.json (default: ./site.json if present)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors (also honors NO_COLOR)")

	root.AddCommand(
		serveCmd(&configPath),
		checkCmd(&configPath),
		versionCmd(),
	)
	return root
}

// loadConfig reads path, or ./site.json when path is empty and the file
// exists, then applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.ConfigFileName); err == nil {
			path = config.ConfigFileName
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mark(code, symbol string) string {
	if !errors.ColorEnabled() {
		return symbol
	}
	return code + symbol + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}
