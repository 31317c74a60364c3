package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig maps environment variables. Pointer fields stay nil when the
// variable is unset so an explicit "false" can still override a file value.
type EnvConfig struct {
	Input  string `env:"GOLAUDO_INPUT"`
	Output string `env:"GOLAUDO_OUTPUT"`

	PDF    *bool `env:"GOLAUDO_PDF"`
	HTML   *bool `env:"GOLAUDO_HTML"`
	Blocks *bool `env:"GOLAUDO_BLOCKS"`

	ReportsDir string `env:"GOLAUDO_REPORTS_DIR"`
	ReportsTar *bool  `env:"GOLAUDO_REPORTS_TAR"`

	Strict    *bool  `env:"GOLAUDO_STRICT"`
	VocabFile string `env:"GOLAUDO_VOCAB_FILE"`
	Verbose   *bool  `env:"GOLAUDO_VERBOSE"`

	Review     *bool  `env:"GOLAUDO_REVIEW"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL"`
	LLMAPIKey  string `env:"LLM_API_KEY"`

	CacheDir         string        `env:"GOLAUDO_CACHE_DIR"`
	CacheMaxAge      time.Duration `env:"GOLAUDO_CACHE_MAX_AGE"`
	CacheClear       *bool         `env:"GOLAUDO_CACHE_CLEAR"`
	CacheStrictPerms *bool         `env:"GOLAUDO_CACHE_STRICT_PERMS"`
}

// LoadEnv parses the process environment.
func LoadEnv() (EnvConfig, error) {
	var e EnvConfig
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("config: parse environment: %w", err)
	}
	return e, nil
}

// ApplyEnvOverrides overrides cfg with every variable that is set. It runs
// after the config file and before explicit flags.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	e, err := LoadEnv()
	if err != nil {
		return err
	}
	applyEnv(cfg, e)
	return nil
}

func applyEnv(cfg *Config, e EnvConfig) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&cfg.InputPath, e.Input)
	setString(&cfg.OutputPath, e.Output)
	setBool(&cfg.EnablePDF, e.PDF)
	setBool(&cfg.EnableHTML, e.HTML)
	setBool(&cfg.EnableBlocks, e.Blocks)
	setString(&cfg.ReportsDir, e.ReportsDir)
	setBool(&cfg.ReportsTar, e.ReportsTar)
	setBool(&cfg.Strict, e.Strict)
	setString(&cfg.VocabFile, e.VocabFile)
	setBool(&cfg.Verbose, e.Verbose)
	setBool(&cfg.Review, e.Review)
	setString(&cfg.LLMBaseURL, e.LLMBaseURL)
	setString(&cfg.LLMModel, e.LLMModel)
	setString(&cfg.LLMAPIKey, e.LLMAPIKey)
	setString(&cfg.CacheDir, e.CacheDir)
	if e.CacheMaxAge > 0 {
		cfg.CacheMaxAge = e.CacheMaxAge
	}
	setBool(&cfg.CacheClear, e.CacheClear)
	setBool(&cfg.CacheStrictPerms, e.CacheStrictPerms)
}
