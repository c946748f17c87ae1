package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	runtimesvc "github.com/lexcodex/incant/internal/incant/runtime"
	"github.com/lexcodex/incant/internal/incant/tui"
)

const version = "0.1.0"

var cfg = runtimesvc.DefaultConfig()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "incant",
		Short:         "Turn natural-language tasks into runnable code",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Version = version
			if err := cfg.Normalize(); err != nil {
				return err
			}
			fc, err := runtimesvc.LoadFileConfig(cfg.ConfigPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(cmd.ErrOrStderr(), "config load: %v\n", err)
				}
				return nil
			}
			// Flags the user set on the command line beat the file.
			flags := cmd.Flags()
			if flags.Changed("model") {
				fc.Model = ""
			}
			if flags.Changed("mode") {
				fc.Mode = ""
			}
			if flags.Changed("language") {
				fc.Language = ""
			}
			if flags.Changed("ollama-endpoint") {
				fc.OllamaEndpoint = ""
			}
			if flags.Changed("timeout") {
				fc.TimeoutSeconds = 0
			}
			if flags.Changed("exec") {
				fc.AutoExecute = nil
			}
			if flags.Changed("display-code") {
				fc.DisplayCode = nil
			}
			if flags.Changed("save-code") {
				fc.SaveCode = nil
			}
			if flags.Changed("open-resources") {
				fc.OpenResources = nil
			}
			if flags.Changed("log") {
				fc.Log = nil
			}
			cfg.Apply(fc)
			return cfg.Normalize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				if term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd()) {
					return tui.Run(ctx, rt)
				}
				return tui.RunPlain(ctx, rt)
			})
		},
	}
	root.PersistentFlags().StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "Configuration directory")
	root.PersistentFlags().StringVarP(&cfg.Model, "model", "m", cfg.Model, "Model to generate with")
	root.PersistentFlags().StringVar(&cfg.Mode, "mode", cfg.Mode, "Session mode (code, script, command, vision, chat)")
	root.PersistentFlags().StringVarP(&cfg.Language, "language", "l", cfg.Language, "Target language for code mode")
	root.PersistentFlags().StringVar(&cfg.OllamaEndpoint, "ollama-endpoint", cfg.OllamaEndpoint, "Ollama endpoint URL")
	root.PersistentFlags().StringVar(&cfg.Workdir, "workdir", cfg.Workdir, "Directory generated programs run in")
	root.PersistentFlags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory saved artifacts go to")
	root.PersistentFlags().IntVarP(&cfg.TimeoutSeconds, "timeout", "t", cfg.TimeoutSeconds, "Execution timeout in seconds")
	root.PersistentFlags().BoolVarP(&cfg.AutoExecute, "exec", "e", cfg.AutoExecute, "Execute generated code without confirmation")
	root.PersistentFlags().BoolVar(&cfg.DisplayCode, "display-code", cfg.DisplayCode, "Show generated code before running it")
	root.PersistentFlags().BoolVarP(&cfg.SaveCode, "save-code", "s", cfg.SaveCode, "Save every generated artifact to the output directory")
	root.PersistentFlags().BoolVar(&cfg.OpenResources, "open-resources", cfg.OpenResources, "Open graph/chart/table files after a run produces them")
	root.PersistentFlags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "Verbose diagnostics in the log file")
	root.PersistentFlags().BoolVar(&cfg.Log, "log", cfg.Log, "Record a structured transcript of every turn")

	root.AddCommand(newModelsCmd(), newHistoryCmd(), newConfigCmd())
	return root
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured profiles and local Ollama models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				models := rt.Models(ctx)
				if len(models) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no profiles configured and no local models found")
					return nil
				}
				for _, model := range models {
					fmt.Fprintln(cmd.OutOrStdout(), model)
				}
				return nil
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [count]",
		Short: "Show recent generation turns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := cfg.HistoryLimit
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("count must be a positive number, got %q", args[0])
				}
				limit = n
			}
			return runWithRuntime(cmd, func(ctx context.Context, rt *runtimesvc.Runtime) error {
				entries, err := rt.History.History(ctx, limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "history is empty")
					return nil
				}
				for _, entry := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s/%s] exit %d  %s\n",
						entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Mode, entry.Language,
						entry.ExitCode, entry.Instruction)
				}
				return nil
			})
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the persisted configuration file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runtimesvc.SaveFileConfig(cfg.ConfigPath, cfg.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote "+cfg.ConfigPath)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config dir:  %s\n", cfg.ConfigDir)
			fmt.Fprintf(out, "profiles:    %s\n", cfg.ProfilesDir)
			fmt.Fprintf(out, "history:     %s\n", cfg.HistoryPath)
			fmt.Fprintf(out, "output dir:  %s\n", cfg.OutputDir)
			fmt.Fprintf(out, "model:       %s\n", cfg.Model)
			fmt.Fprintf(out, "mode:        %s\n", cfg.Mode)
			fmt.Fprintf(out, "language:    %s\n", cfg.Language)
			fmt.Fprintf(out, "timeout:     %ds\n", cfg.TimeoutSeconds)
			fmt.Fprintf(out, "auto-exec:   %t\n", cfg.AutoExecute)
			fmt.Fprintf(out, "save-code:   %t\n", cfg.SaveCode)
			fmt.Fprintf(out, "transcript:  %t\n", cfg.Log)
			return nil
		},
	})
	return configCmd
}

func runWithRuntime(cmd *cobra.Command, fn func(context.Context, *runtimesvc.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := runtimesvc.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}
