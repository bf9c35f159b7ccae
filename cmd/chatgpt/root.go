package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TABmk/chatgpt-wrapper/pkg/chat"
	"github.com/TABmk/chatgpt-wrapper/pkg/config"
	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
	"github.com/TABmk/chatgpt-wrapper/pkg/validate"
)

// options holds the persistent flags shared by all subcommands.
type options struct {
	configPath string
	model      string
	org        string
	url        string
	debug      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "chatgpt",
		Short:        "Send chat-completion requests to the OpenAI API",
		Long:         "chatgpt sends prompts or full request documents to the chat completions endpoint and prints the buffered or streamed reply.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (default: discovered)")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "default model for prompts")
	root.PersistentFlags().StringVar(&opts.org, "org", "", "OpenAI organization id")
	root.PersistentFlags().StringVar(&opts.url, "url", "", "chat completions endpoint URL")
	root.PersistentFlags().StringVar(&opts.debug, "debug", "", "debug categories: "+strings.Join(debug.Categories(), ","))

	root.AddCommand(newSendCmd(opts))
	root.AddCommand(newStreamCmd(opts))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newModelsCmd())

	return root
}

// loadConfig loads the layered configuration and applies flag overrides on top.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.model != "" {
		cfg.Client.Model = o.model
	}
	if o.org != "" {
		cfg.Client.Org = o.org
	}
	if o.url != "" {
		cfg.Client.URL = o.url
	}
	if o.debug != "" {
		cfg.Log.Debug = o.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	debug.Init(cfg.Log.Debug, cfg.Log.Level)
	return cfg, nil
}

func (o *options) newClient() (*chat.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return chat.New(cfg.ChatConfig())
}

// content turns the positional prompt or a request file into chat.Content.
// Request files are schema-checked before anything is sent.
func content(args []string, file string) (chat.Content, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a prompt or --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading request file: %w", err)
		}
		req, violations, err := validate.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if len(violations) > 0 {
			return nil, fmt.Errorf("%s is not a valid request:\n  %s", file, strings.Join(violations, "\n  "))
		}
		return req, nil
	case len(args) > 0:
		return chat.Prompt(strings.Join(args, " ")), nil
	default:
		return nil, fmt.Errorf("a prompt or --file is required")
	}
}
