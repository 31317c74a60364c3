package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`

	Formats struct {
		PDF    *bool `yaml:"pdf" json:"pdf"`
		HTML   *bool `yaml:"html" json:"html"`
		Blocks *bool `yaml:"blocks" json:"blocks"`
	} `yaml:"formats" json:"formats"`

	Reports struct {
		Dir string `yaml:"dir" json:"dir"`
		Tar bool   `yaml:"tar" json:"tar"`
	} `yaml:"reports" json:"reports"`

	Vocab struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"vocab" json:"vocab"`

	Strict  bool `yaml:"strict" json:"strict"`
	Verbose bool `yaml:"verbose" json:"verbose"`

	Review struct {
		Enable bool `yaml:"enable" json:"enable"`
	} `yaml:"review" json:"review"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. Env and
// flags are applied afterwards and win over it.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if fc.Formats.PDF != nil {
		cfg.EnablePDF = *fc.Formats.PDF
	}
	if fc.Formats.HTML != nil {
		cfg.EnableHTML = *fc.Formats.HTML
	}
	if fc.Formats.Blocks != nil {
		cfg.EnableBlocks = *fc.Formats.Blocks
	}
	if fc.Reports.Dir != "" {
		cfg.ReportsDir = fc.Reports.Dir
	}
	cfg.ReportsTar = cfg.ReportsTar || fc.Reports.Tar
	if fc.Vocab.File != "" {
		cfg.VocabFile = fc.Vocab.File
	}
	cfg.Strict = cfg.Strict || fc.Strict
	cfg.Verbose = cfg.Verbose || fc.Verbose
	cfg.Review = cfg.Review || fc.Review.Enable
	if fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
}

// ValidateConfig checks the settings a run cannot do without.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if cfg.CacheMaxAge < 0 {
		return errors.New("config: cache max age must not be negative")
	}
	if cfg.Review && strings.TrimSpace(cfg.LLMModel) != "" && strings.TrimSpace(cfg.LLMBaseURL) == "" {
		return errors.New("config: llm.base is required when llm.model is set (or set LLM_BASE_URL)")
	}
	return nil
}
