package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "golaudo.yaml")
	body := `input: pedido.yaml
output: out/laudo.md
formats:
  pdf: false
  html: true
reports:
  dir: arquivo
  tar: true
strict: true
review:
  enable: true
llm:
  base: http://localhost:1234/v1
  model: revisor
cache:
  maxAge: 36h
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)

	if cfg.InputPath != "pedido.yaml" || cfg.OutputPath != "out/laudo.md" {
		t.Fatalf("paths not applied: %+v", cfg)
	}
	if cfg.EnablePDF {
		t.Fatalf("formats.pdf=false should disable the default PDF")
	}
	if !cfg.EnableHTML || cfg.EnableBlocks {
		t.Fatalf("formats mismatch: html=%v blocks=%v", cfg.EnableHTML, cfg.EnableBlocks)
	}
	if cfg.ReportsDir != "arquivo" || !cfg.ReportsTar || !cfg.Strict || !cfg.Review {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.LLMModel != "revisor" || cfg.CacheMaxAge != 36*time.Hour {
		t.Fatalf("llm/cache not applied: %+v", cfg)
	}
	if cfg.CacheDir != DefaultCacheDir {
		t.Fatalf("unset cache dir should keep default, got %q", cfg.CacheDir)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "golaudo.json")
	if err := os.WriteFile(p, []byte(`{"input":"a.json","formats":{"blocks":true}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	if cfg.InputPath != "a.json" || !cfg.EnableBlocks || !cfg.EnablePDF {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "golaudo.yaml")
	if err := os.WriteFile(p, []byte("input: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(p); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadConfigFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestApplyEnvOverrides_WinsOverFile(t *testing.T) {
	cfg := DefaultConfig()
	var fc FileConfig
	fc.Output = "from-file.md"
	fc.Strict = true
	ApplyFileConfig(&cfg, fc)

	t.Setenv("GOLAUDO_OUTPUT", "from-env.md")
	t.Setenv("GOLAUDO_STRICT", "false")
	t.Setenv("GOLAUDO_PDF", "false")
	t.Setenv("GOLAUDO_CACHE_MAX_AGE", "2h")
	t.Setenv("LLM_MODEL", "m1")

	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("env: %v", err)
	}
	if cfg.OutputPath != "from-env.md" {
		t.Fatalf("env output should win, got %q", cfg.OutputPath)
	}
	if cfg.Strict {
		t.Fatalf("explicit GOLAUDO_STRICT=false should override the file")
	}
	if cfg.EnablePDF {
		t.Fatalf("GOLAUDO_PDF=false should disable PDF")
	}
	if cfg.CacheMaxAge != 2*time.Hour || cfg.LLMModel != "m1" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestApplyEnvOverrides_UnsetLeavesValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("env: %v", err)
	}
	if !cfg.Strict || !cfg.EnablePDF || cfg.OutputPath != DefaultOutputPath {
		t.Fatalf("unset env changed cfg: %+v", cfg)
	}
}

func TestApplyEnvOverrides_BadBool(t *testing.T) {
	t.Setenv("GOLAUDO_HTML", "talvez")
	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(&cfg); err == nil {
		t.Fatalf("expected parse error for invalid bool")
	}
}

func TestValidateConfig(t *testing.T) {
	base := DefaultConfig()
	base.InputPath = "pedido.yaml"
	if err := ValidateConfig(base); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cases := map[string]func(*Config){
		"no input":        func(c *Config) { c.InputPath = " " },
		"no output":       func(c *Config) { c.OutputPath = "" },
		"negative maxAge": func(c *Config) { c.CacheMaxAge = -time.Second },
		"model no base":   func(c *Config) { c.Review = true; c.LLMModel = "m" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			if err := ValidateConfig(c); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	// Review without a model runs the rule checks only.
	c := base
	c.Review = true
	if err := ValidateConfig(c); err != nil {
		t.Fatalf("rule-only review rejected: %v", err)
	}
}
