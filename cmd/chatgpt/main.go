// Command chatgpt sends chat-completion requests from the command line.
//
//	chatgpt send "What is the capital of France?"
//	chatgpt stream --text "Tell me a story"
//	chatgpt send --file request.json
//	chatgpt validate request.json
//	chatgpt models
//
// The API key comes from the config file, CHATGPT_API_KEY or OPENAI_API_KEY.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.Version = version + " (commit: " + commit + ")"
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
