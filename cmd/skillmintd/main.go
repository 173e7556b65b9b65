// Command skillmintd is the CLI entrypoint for the agent runtime:
// wiring the tool registry, provider router, and ReAct executor behind
// a small cobra command tree. Grounded on the teacher's
// cmd/alex/cobra_cli.go (cobra root command with config/version
// subcommands, fatih/color-styled output).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"skillmint/internal/agent"
	"skillmint/internal/config"
	gocontext "skillmint/internal/context"
	"skillmint/internal/core"
	"skillmint/internal/llmstream"
	"skillmint/internal/obslog"
	"skillmint/internal/providers"
	"skillmint/internal/router"
	"skillmint/internal/tools/orchestration"
	"skillmint/internal/tools/procmgr"
	"skillmint/internal/toolregistry"
)

var version = "dev"

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "skillmintd",
		Short: "Run the skill-driven agent runtime from the command line.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runPrompt(configPath, args[0])
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a skillmint config file.")

	root.AddCommand(newConfigCommand(&configPath))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the runtime version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newConfigCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect the resolved runtime configuration."}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			infoColor.Printf("provider:        %s\n", cfg.LLMProvider)
			infoColor.Printf("model:           %s\n", cfg.LLMModel)
			infoColor.Printf("max_iterations:  %d\n", cfg.MaxIterations)
			infoColor.Printf("token_limit:     %d\n", cfg.TokenLimit)
			infoColor.Printf("permission_mode: %s\n", cfg.PermissionMode)
			return nil
		},
	})
	return cmd
}

// runPrompt wires a full runtime from configuration and runs a single
// prompt to completion, printing every assistant text message of the
// resulting history.
func runPrompt(configPath, prompt string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := obslog.NewConsole("skillmintd", cfg.Debug)

	procManager := procmgr.NewManager()
	callStack := &orchestration.CallStack{}
	ctxManager := &gocontext.Manager{
		TranscriptDir: cfg.TranscriptDir,
		SessionID:     "cli",
		TokenLimit:    cfg.TokenLimit,
		Threshold:     0.8,
	}

	reg := toolregistry.New()
	prompter := newlinePrompter{}

	var session *agent.Session
	toolregistry.RegisterBuiltins(reg, toolregistry.BuiltinsConfig{
		ProcessManager: procManager,
		MemoryDir:      cfg.MemoryDir,
		SkillsDir:      cfg.SkillsDir,
		CallStack:      callStack,
		Prompter:       prompter,
		SubAgentRunner: subAgentRunnerFunc(func(ctx context.Context, p string, allowed []string) (string, error) {
			return session.RunSubAgent(ctx, p, allowed)
		}),
		Compactor: compactorFunc(func(ctx context.Context) (string, error) {
			return session.ForceCompact(ctx)
		}),
	})

	r := router.New()
	r.RegisterProvider(providers.NewHTTPProvider(providers.HTTPConfig{
		Name:    cfg.LLMProvider,
		Kind:    providerKind(cfg.LLMProvider),
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.LLMModel,
	}))
	r.SetPolicy(router.RoutingPolicy{Capability: "chat", Primary: cfg.LLMProvider, Enabled: true, TimeoutMS: int(cfg.RequestTimeout.Milliseconds())})

	exec := agent.New(agent.Config{
		Registry:       reg,
		LLM:            providers.RouterLLM{Router: r},
		Mode:           cfg.Mode(),
		MaxIterations:  cfg.MaxIterations,
		Logger:         logger,
		ContextManager: ctxManager,
	})

	tc := core.ToolContext{WorkDir: cfg.WorkDir}
	session = agent.NewSession(exec, tc, []core.Message{{Role: core.RoleUser, Text: prompt}})

	if err := session.Run(context.Background()); err != nil {
		return err
	}

	for _, m := range session.Messages() {
		if m.Role == core.RoleAssistant && m.Text != "" {
			successColor.Println(m.Text)
		}
	}
	return nil
}

func providerKind(name string) llmstream.Kind {
	if name == "anthropic" {
		return llmstream.KindAnthropicCompat
	}
	return llmstream.KindOpenAICompat
}

// subAgentRunnerFunc adapts a plain function to orchestration.SubAgentRunner.
type subAgentRunnerFunc func(ctx context.Context, prompt string, allowedTools []string) (string, error)

func (f subAgentRunnerFunc) RunSubAgent(ctx context.Context, prompt string, allowedTools []string) (string, error) {
	return f(ctx, prompt, allowedTools)
}

// compactorFunc adapts a plain function to interact.Compactor.
type compactorFunc func(ctx context.Context) (string, error)

func (f compactorFunc) ForceCompact(ctx context.Context) (string, error) { return f(ctx) }
