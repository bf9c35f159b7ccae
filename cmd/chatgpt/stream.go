package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/sse"
)

func newStreamCmd(opts *options) *cobra.Command {
	var (
		file string
		text bool
	)

	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: "Send a streaming request and copy the event stream to stdout",
		Long:  "stream writes the raw server-sent events as received. With --text the frames are decoded and only the content is printed as it arrives.",
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

			body, err := client.Stream(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer body.Close()

			out := cmd.OutOrStdout()
			if !text {
				_, err = io.Copy(out, body)
				return err
			}

			var writeErr error
			res, err := sse.CollectFunc(body, func(delta string) {
				if writeErr == nil {
					_, writeErr = io.WriteString(out, delta)
				}
			})
			if err != nil {
				return err
			}
			if writeErr != nil {
				return writeErr
			}
			fmt.Fprintln(out)
			if res.FinishReason.Complete() && res.FinishReason != chat.FinishReasonStop {
				fmt.Fprintf(cmd.ErrOrStderr(), "finish_reason: %s\n", res.FinishReason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON request document to send")
	cmd.Flags().BoolVar(&text, "text", false, "decode the stream and print only content deltas")
	return cmd
}
