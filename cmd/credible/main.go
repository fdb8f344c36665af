// Package main is the CLI entry point for credible.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	credFile   string
	identPaths []string
	verbose    bool
	quiet      bool
)

func main() {
	root := &cobra.Command{
		Use:   "credible",
		Short: "Host-local secrets agent",
		Long:  `credible fetches age-encrypted secrets from a remote store and materializes the plaintext into a child process's environment and private temp files, or into a RAM-backed persistent mount.`,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	}

	root.PersistentFlags().
		StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/credible/config.yaml)")
	root.PersistentFlags().
		StringVar(&credFile, "credentials-file", "", "credentials file (default: ~/.config/credible/credentials)")
	root.PersistentFlags().
		StringArrayVarP(&identPaths, "identity", "i", nil, "identity file (default: ~/.ssh/id_rsa, ~/.ssh/id_ed25519)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddGroup(
		&cobra.Group{ID: "secret", Title: "Secret:"},
		&cobra.Group{ID: "system", Title: "System:"},
		&cobra.Group{ID: "run", Title: "Run:"},
	)

	root.AddCommand(createCmd())
	root.AddCommand(editCmd())
	root.AddCommand(uploadCmd())
	root.AddCommand(runCommandCmd())
	root.AddCommand(mountCmd())
	root.AddCommand(unmountCmd())

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	setupLoggingWithWriter(os.Stderr)
}

func setupLoggingWithWriter(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}
