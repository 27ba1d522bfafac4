package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/storyweaver/internal/config"
	"github.com/jonathan/storyweaver/internal/lexicon"
	"github.com/jonathan/storyweaver/internal/llm"
	"github.com/jonathan/storyweaver/internal/logging"
	"github.com/jonathan/storyweaver/internal/observability"
	"github.com/jonathan/storyweaver/internal/optimize"
	"github.com/jonathan/storyweaver/internal/pipeline"
	"github.com/jonathan/storyweaver/internal/usage"
)

type extractOptions struct {
	configPath  string
	model       string
	apiKey      string
	baseURL     string
	lexicon     string
	concurrency int
	rateLimit   float64
	noOptimize  bool
	out         string
	metricsFile string
	logLevel    string
	logFormat   string
	verbose     bool
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract ranked user stories from a requirement document",
		Long: `Runs the full pipeline on a .txt or .md document: section split -> sentence segmentation -> story extraction -> optional LLM optimization -> dedup and ranking.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.
The API key defaults to the STORYWEAVER_API_KEY env var; without a key, stories are returned unoptimized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args[0])
		},
	}

	// Config file flag (processed first)
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model used for optimization (see 'storyweaver providers')")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Provider API key (optional, defaults to STORYWEAVER_API_KEY env var)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override the provider endpoint")
	cmd.Flags().StringVar(&opts.lexicon, "lexicon", "", "Path to a YAML lexicon overriding the keyword tables")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Maximum concurrent optimization calls")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", 0, "Maximum optimization calls per second (0 disables)")
	cmd.Flags().BoolVar(&opts.noOptimize, "no-optimize", false, "Skip LLM optimization")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the parsed document JSON to this file instead of stdout")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write usage metrics in Prometheus text format to this file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: json or console")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	return cmd
}

// resolveConfig loads the config file, applies flag overrides and fills defaults
func resolveConfig(cmd *cobra.Command, opts *extractOptions) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = opts.model
	}
	if flags.Changed("api-key") {
		cfg.APIKey = opts.apiKey
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("lexicon") {
		cfg.Lexicon = opts.lexicon
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimitRPS = opts.rateLimit
	}
	if flags.Changed("no-optimize") {
		cfg.NoOptimize = opts.noOptimize
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.Verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	lex, err := lexicon.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	return lex, nil
}

// newOptimizer returns nil when optimization is off or no credential is configured
func newOptimizer(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Provider, error) {
	if cfg.NoOptimize {
		return nil, nil
	}
	llmCfg := cfg.LLMConfig()
	if !llmCfg.HasCredentials() {
		logger.Info("no API key configured, skipping optimization", zap.String("env", config.APIKeyEnv))
		return nil, nil
	}
	provider, err := llm.NewProvider(ctx, llmCfg,
		llm.WithLogger(logger),
		llm.WithRateLimit(cfg.RateLimitRPS, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return provider, nil
}

func runExtract(cmd *cobra.Command, opts *extractOptions, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	lex, err := loadLexicon(cfg.Lexicon)
	if err != nil {
		return err
	}

	provider, err := newOptimizer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	runOpts := pipeline.RunOptions{
		Path:           path,
		Lexicon:        lex,
		Concurrency:    cfg.Concurrency,
		Logger:         logger,
		ValidateOutput: true,
	}
	ledger := usage.NewLedger(func(model string, promptTokens, completionTokens int) float64 {
		return llm.EstimateCost(llm.Model(model), promptTokens, completionTokens)
	})
	if provider != nil {
		defer func() { _ = provider.Close() }()
		runOpts.Optimizer = provider
		runOpts.Ledger = ledger
	}
	if runOpts.Concurrency == 0 {
		runOpts.Concurrency = optimize.DefaultConcurrency
	}

	doc, err := pipeline.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	// Human-readable output goes to stderr when the JSON document owns stdout
	human := cmd.ErrOrStderr()
	if opts.out != "" {
		human = cmd.OutOrStdout()
	}
	if cfg.Verbose {
		printer := observability.NewPrinter(human)
		printer.PrintSections(doc.Sections)
		printer.PrintStories(doc.Stories)
		printer.PrintDocument(doc)
		printer.PrintUsage(ledger.Stats())
	}

	if err := writeDocument(cmd.OutOrStdout(), opts.out, doc); err != nil {
		return err
	}
	if opts.out != "" {
		_, _ = fmt.Fprintf(human, "Extracted %d stories from %s\n", doc.StoryCount, doc.FileName)
		_, _ = fmt.Fprintf(human, "Document: %s\n", opts.out)
	}

	if opts.metricsFile != "" {
		registry := prometheus.NewRegistry()
		if err := registry.Register(ledger.Collector()); err != nil {
			return fmt.Errorf("failed to register usage metrics: %w", err)
		}
		if err := prometheus.WriteToTextfile(opts.metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// writeDocument writes indented JSON to path, or to stdout when path is empty
func writeDocument(stdout io.Writer, path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
