package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TABmk/chatgpt-wrapper/pkg/validate"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a request document against the request schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading request file: %w", err)
			}
			violations, err := validate.Request(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			if len(violations) == 0 {
				fmt.Fprintf(out, "%s: valid\n", args[0])
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "%s: %s\n", args[0], v)
			}
			return fmt.Errorf("%s: %d schema violation(s)", args[0], len(violations))
		},
	}
}
