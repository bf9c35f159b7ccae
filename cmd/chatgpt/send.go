package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSendCmd(opts *options) *cobra.Command {
	var (
		file string
		text bool
	)

	cmd := &cobra.Command{
		Use:   "send [prompt]",
		Short: "Send a request and print the buffered response",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := content(args, file)
			if err != nil {
				return err
			}
			client, err := opts.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.Send(cmd.Context(), c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if text {
				_, err = fmt.Fprintln(out, resp.Text())
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON request document to send")
	cmd.Flags().BoolVar(&text, "text", false, "print only the first choice's content")
	return cmd
}
