package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:     "create <secret-name>",
		Short:   "Encrypt a new secret into the store",
		GroupID: "secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Create(cmd.Context(), args[0], source); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "created %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source file (default: stdin)")
	return cmd
}

func uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload <secret-name> <source-file>",
		Short:   "Replace a secret's ciphertext in the store",
		GroupID: "secret",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Upload(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "uploaded %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func editCmd() *cobra.Command {
	var editorFlag string

	cmd := &cobra.Command{
		Use:     "edit <secret-name>",
		Short:   "Decrypt, edit, and re-encrypt a secret in place",
		GroupID: "secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildManager(cmd.Context())
			if err != nil {
				return err
			}

			editor := editorFlag
			if editor == "" {
				editor = os.Getenv("EDITOR")
			}
			if editor == "" {
				editor = "vi"
			}

			if err := m.Edit(cmd.Context(), args[0], strings.Fields(editor)); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "edited %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&editorFlag, "editor", "", "editor command (default: $EDITOR, then vi)")
	return cmd
}
