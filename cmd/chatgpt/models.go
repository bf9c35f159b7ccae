package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported model identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range chat.Models() {
				if m == chat.DefaultModel {
					fmt.Fprintf(out, "%s (default)\n", m)
					continue
				}
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}
}
