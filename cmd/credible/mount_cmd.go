package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kclejeune/credible/internal/config"
	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/mount"
)

func mountCmd() *cobra.Command {
	var base, stableDir string

	cmd := &cobra.Command{
		Use:     "mount",
		Short:   "Mount the configured secrets as files at a stable path",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}

			path := cfgFile
			if path == "" {
				path = config.DefaultConfigPath()
			}
			cfg, err := config.Load([]string{path})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// cfg.Exposures only adds extra vanity symlinks on top of the
			// default per-secret file mount.Controller.Mount always
			// materializes; it does not narrow which secrets get mounted.
			b := exposure.NewBuilder()
			if err := b.AddMountConfig(cfg.Exposures); err != nil {
				return err
			}
			exposures, err := b.Finalize(m.Secrets.Names())
			if err != nil {
				return err
			}

			if err := m.Mount(cmd.Context(), base, stableDir, exposures.Files); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "mounted %s\n", stableDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", mount.DefaultBase, "generation base directory")
	cmd.Flags().StringVar(&stableDir, "stable-dir", mount.DefaultStableDir, "stable mount path")
	return cmd
}

func unmountCmd() *cobra.Command {
	var base, stableDir string

	cmd := &cobra.Command{
		Use:     "unmount",
		Short:   "Tear down the persistent secret mount",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Unmount(base, stableDir); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "unmounted %s\n", stableDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", mount.DefaultBase, "generation base directory")
	cmd.Flags().StringVar(&stableDir, "stable-dir", mount.DefaultStableDir, "stable mount path")
	return cmd
}
