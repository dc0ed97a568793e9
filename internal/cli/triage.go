package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"docktor/internal/agent"
	"docktor/internal/cluster"
	"docktor/internal/config"
	"docktor/internal/diagnose"
	"docktor/internal/report"
)

const defaultConfigPath = ".docktor.yml"

// Seams for tests.
var (
	newClientset = cluster.NewClientset
	newProvider  = providerFromConfig
	now          = time.Now
)

func runTriage(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", defaultConfigPath, "Path to the config file")
		kubeconfig := fs.String("kubeconfig", "", "Path to the kubeconfig file")
		kubeContext := fs.String("context", "", "Kubeconfig context override")
		namespace := fs.String("namespace", "", "Namespace to inspect (empty means all namespaces)")
		provider := fs.String("provider", "", "Reasoning provider (gemini or openrouter)")
		model := fs.String("model", "", "Model override")
		output := fs.String("output", "", "Report output directory")
		maxAnalyses := fs.Int("max-analyses", 0, "Reasoning invocation bound (1-5)")
		verbose := fs.Bool("verbose", false, "Print run progress to stderr")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		cfg, err := loadConfig(*configPath, *configPath != defaultConfigPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		applyOverrides(&cfg, fs, *kubeconfig, *kubeContext, *namespace, *provider, *model, *output, *maxAnalyses, *verbose)
		config.ApplyDefaults(&cfg)
		if err := config.Validate(&cfg); err != nil {
			fmt.Fprintf(stderr, "Invalid config: %v\n", err)
			return ExitError
		}

		ctx := context.Background()
		engine, err := newProvider(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to build provider: %v\n", err)
			return ExitError
		}
		clientset, err := newClientset(cfg.Kubeconfig, cfg.Context)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to connect to the cluster: %v\n", err)
			return ExitError
		}

		renderer := report.NewRenderer(now())
		orchestrator := &diagnose.Orchestrator{
			Collector:   cluster.NewCollector(clientset, cfg.Namespace),
			Provider:    engine,
			Executor:    diagnose.ShellExecutor{Timeout: time.Duration(cfg.CommandTimeoutSeconds) * time.Second},
			Assembler:   renderer,
			MaxAnalyses: cfg.MaxAnalyses,
			Options:     diagnose.Options{Verbose: cfg.Verbose, Writer: stderr},
		}

		result, err := orchestrator.Run(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Triage failed: %v\n", err)
			return ExitError
		}
		path, err := report.Write(cfg.OutputDir, renderer.GeneratedAt(), result.Report)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
			return ExitError
		}

		if result.FailureReason != "" {
			fmt.Fprintf(stderr, "Analysis ended early: %s\n", result.FailureReason)
		}
		fmt.Fprintf(stdout, "Run %s completed\n", result.State.RunID)
		fmt.Fprintf(stdout, "Report: %s\n", path)
		return ExitOK
	}
}

// loadConfig reads the config file. An explicitly named file must exist and
// goes through the full load pipeline; the default .docktor.yml is optional
// and a missing one falls back to defaults.
func loadConfig(path string, explicit bool) (config.Config, error) {
	if explicit {
		return config.Load(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Config{}, nil
		}
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	return config.Parse(data)
}

// applyOverrides writes explicitly set flags over the file config. Flags that
// were not passed leave the file values untouched.
func applyOverrides(cfg *config.Config, fs *flag.FlagSet, kubeconfig, kubeContext, namespace, provider, model, output string, maxAnalyses int, verbose bool) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["kubeconfig"] {
		cfg.Kubeconfig = kubeconfig
	}
	if set["context"] {
		cfg.Context = kubeContext
	}
	if set["namespace"] {
		cfg.Namespace = namespace
	}
	if set["provider"] {
		cfg.Provider = provider
		// A provider switch without an explicit model falls back to the new
		// provider's default model.
		if !set["model"] {
			cfg.Model = ""
		}
	}
	if set["model"] {
		cfg.Model = model
	}
	if set["output"] {
		cfg.OutputDir = output
	}
	if set["max-analyses"] {
		cfg.MaxAnalyses = maxAnalyses
	}
	if set["verbose"] {
		cfg.Verbose = verbose
	}
}

// providerFromConfig builds the reasoning provider named by the config,
// reading its API key from the environment.
func providerFromConfig(ctx context.Context, cfg config.Config) (agent.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return agent.NewGeminiProvider(ctx, cfg.Model, apiKey)
	case "openrouter":
		apiKey := os.Getenv("LLM_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for the openrouter provider")
		}
		return agent.NewOpenRouterProvider(cfg.Model, apiKey, "", nil)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
