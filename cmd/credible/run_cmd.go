package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kclejeune/credible/internal/exposure"
)

func runCommandCmd() *cobra.Command {
	var fileFlags, envFlags []string

	cmd := &cobra.Command{
		Use:     "run-command -- <argv...>",
		Short:   "Run a command with secrets exposed as files and/or env vars",
		GroupID: "run",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}

			b := exposure.NewBuilder()
			for _, f := range fileFlags {
				if err := b.AddFlag("file:" + f); err != nil {
					return err
				}
			}
			for _, e := range envFlags {
				if err := b.AddFlag("env:" + e); err != nil {
					return err
				}
			}
			exposures, err := b.Finalize(m.Secrets.Names())
			if err != nil {
				return err
			}

			code, err := m.RunCommand(cmd.Context(), args, exposures)
			if err != nil {
				return err
			}
			os.Exit(code)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&fileFlags, "file", "f", nil, "expose a secret as a file: secret:vanity_path")
	cmd.Flags().StringArrayVarP(&envFlags, "env", "e", nil, "expose a secret as an env var: secret:ENV_NAME")
	cmd.Flags().SetInterspersed(false)
	return cmd
}
