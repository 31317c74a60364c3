package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string

	// Outputs next to the Markdown report
	EnablePDF    bool
	EnableHTML   bool
	EnableBlocks bool

	// Bundle
	ReportsDir string
	ReportsTar bool

	// Behavior
	Strict    bool
	VocabFile string
	Verbose   bool

	// Review
	Review     bool
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
}

// Defaults used by the CLI before file, env and flags are layered on.
const (
	DefaultOutputPath = "laudo.md"
	DefaultCacheDir   = ".golaudo-cache"
)

// DefaultConfig returns the configuration before any overrides.
func DefaultConfig() Config {
	return Config{
		OutputPath: DefaultOutputPath,
		EnablePDF:  true,
		CacheDir:   DefaultCacheDir,
	}
}
