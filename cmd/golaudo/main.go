package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("configuration")
		os.Exit(2)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps request problems to 2 and everything else to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrValidation), errors.Is(err, app.ErrMalformedItems):
		return 2
	default:
		return 1
	}
}

// parseConfig layers defaults, the optional config file, the environment and
// the flags given on the command line, in that order.
func parseConfig(args []string) (app.Config, error) {
	def := app.DefaultConfig()
	fs := flag.NewFlagSet("golaudo", flag.ContinueOnError)

	var (
		configPath  string
		inputPath   string
		outputPath  string
		enablePDF   bool
		enableHTML  bool
		enableBlock bool
		reportsDir  string
		reportsTar  bool
		strict      bool
		vocabFile   string
		verbose     bool
		review      bool
		llmBaseURL  string
		llmModel    string
		llmKey      string
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		cacheStrict bool
	)

	fs.StringVar(&configPath, "config", os.Getenv("GOLAUDO_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&inputPath, "input", "", "Path to the exam request (YAML or JSON)")
	fs.StringVar(&outputPath, "output", def.OutputPath, "Path to write the Markdown report")
	fs.BoolVar(&enablePDF, "pdf", def.EnablePDF, "Also write a PDF next to the Markdown report")
	fs.BoolVar(&enableHTML, "html", false, "Also write a standalone HTML page")
	fs.BoolVar(&enableBlock, "blocks", false, "Also write the styled blocks as JSON")
	fs.StringVar(&reportsDir, "reports.dir", "", "Copy outputs into <dir>/<seal> with SHA256SUMS")
	fs.BoolVar(&reportsTar, "reports.tar", false, "Also write <dir>/<seal>.tar.gz")
	fs.BoolVar(&strict, "strict", false, "Fail instead of writing placeholders for malformed items")
	fs.StringVar(&vocabFile, "vocab.file", "", "Vocabulary YAML replacing the embedded one")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.BoolVar(&review, "review", false, "Write a review sidecar with rule and optional model checks")
	fs.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL for the review model")
	fs.StringVar(&llmModel, "llm.model", "", "Review model name")
	fs.StringVar(&llmKey, "llm.key", "", "API key for the review model")
	fs.StringVar(&cacheDir, "cache.dir", def.CacheDir, "Review cache directory")
	fs.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Purge review cache entries older than this; 0 disables")
	fs.BoolVar(&cacheClear, "cache.clear", false, "Clear the review cache before run")
	fs.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}

	cfg := def
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return app.Config{}, err
	}

	// Only flags given explicitly override file and env values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = inputPath
		case "output":
			cfg.OutputPath = outputPath
		case "pdf":
			cfg.EnablePDF = enablePDF
		case "html":
			cfg.EnableHTML = enableHTML
		case "blocks":
			cfg.EnableBlocks = enableBlock
		case "reports.dir":
			cfg.ReportsDir = reportsDir
		case "reports.tar":
			cfg.ReportsTar = reportsTar
		case "strict":
			cfg.Strict = strict
		case "vocab.file":
			cfg.VocabFile = vocabFile
		case "v":
			cfg.Verbose = verbose
		case "review":
			cfg.Review = review
		case "llm.base":
			cfg.LLMBaseURL = llmBaseURL
		case "llm.model":
			cfg.LLMModel = llmModel
		case "llm.key":
			cfg.LLMAPIKey = llmKey
		case "cache.dir":
			cfg.CacheDir = cacheDir
		case "cache.maxAge":
			cfg.CacheMaxAge = cacheMaxAge
		case "cache.clear":
			cfg.CacheClear = cacheClear
		case "cache.strictPerms":
			cfg.CacheStrictPerms = cacheStrict
		}
	})
	// A single positional argument is taken as the request path.
	if cfg.InputPath == "" && fs.NArg() == 1 {
		cfg.InputPath = fs.Arg(0)
	}
	return cfg, nil
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
