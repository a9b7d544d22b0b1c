package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"restaurant-agent/internal/agent"
	"restaurant-agent/internal/app"
	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/intent"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "agent-cli",
		Short:         "Ask the restaurant assistant questions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file (defaults to configs/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	cmd.AddCommand(newAskCmd(opts), newClassifyCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) logger() logger.Logger {
	if !o.verbose {
		return logger.NewNoOpLogger()
	}
	return logger.NewStructured("debug", "console")
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var noLLM bool
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Run one question through the full pipeline and print the response as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			if noLLM {
				cfg.LLM.Enabled = false
			}
			log := opts.logger()

			ctx := cmd.Context()
			deps, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer deps.Close()

			a := agent.New(deps.Completer, deps.Store, app.AgentConfig(cfg.Agent), log)
			resp := a.ProcessMessage(ctx, strings.Join(args, " "))
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "skip the model and use keyword classification and templates")
	return cmd
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var useLLM bool
	cmd := &cobra.Command{
		Use:   "classify QUESTION",
		Short: "Print the intent tag for a question (keywords only unless --llm)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if !useLLM {
				return writeJSON(cmd.OutOrStdout(), intent.Result{
					Tag:    intent.MatchKeywords(question).Tag(),
					Source: intent.SourceKeywords,
				})
			}

			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			c := intent.New(app.NewCompleter(cfg.LLM), opts.logger(),
				intent.WithCallTimeout(config.GetDuration(cfg.Agent.CallTimeout)))
			return writeJSON(cmd.OutOrStdout(), c.Classify(cmd.Context(), question))
		},
	}
	cmd.Flags().BoolVar(&useLLM, "llm", false, "ask the configured model, falling back to keywords")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
