package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/brief"
	"github.com/hyperifyio/golaudo/internal/cache"
	"github.com/hyperifyio/golaudo/internal/lexical"
	"github.com/hyperifyio/golaudo/internal/llm"
	"github.com/hyperifyio/golaudo/internal/sections"
	"github.com/hyperifyio/golaudo/internal/synth"
	"github.com/hyperifyio/golaudo/internal/validate"
	"github.com/hyperifyio/golaudo/internal/verify"
	"github.com/hyperifyio/golaudo/internal/vocab"
)

// ErrValidation is returned when the request misses required fields.
// Nothing is written in that case.
var ErrValidation = errors.New("request validation failed")

// ErrMalformedItems is returned in strict mode when any item could not be
// described cleanly. Nothing is written in that case.
var ErrMalformedItems = errors.New("malformed items")

type App struct {
	cfg       Config
	vocab     *vocab.Vocabulary
	resolver  *lexical.Resolver
	reviewer  *verify.Reviewer
	vocabName string

	now   func() time.Time
	newID func() (string, error)
}

// Result is everything generated for one request, before anything is
// written to disk.
type Result struct {
	DocumentID  string
	SealNumber  string
	GeneratedAt time.Time
	Batch       synth.BatchResult
	Report      sections.Report
	Findings    []validate.Finding
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, now: time.Now, newID: newDocumentID, vocabName: "embedded"}

	if strings.TrimSpace(cfg.VocabFile) != "" {
		v, err := vocab.LoadFile(cfg.VocabFile)
		if err != nil {
			return nil, err
		}
		a.vocab = v
		a.vocabName = cfg.VocabFile
		log.Info().Str("file", cfg.VocabFile).Msg("vocabulary override loaded")
	} else {
		a.vocab = vocab.Default()
	}
	a.resolver = lexical.New(a.vocab)

	if cfg.Review {
		a.reviewer = &verify.Reviewer{}
		if strings.TrimSpace(cfg.LLMModel) != "" {
			p, err := llm.New(llm.Config{BaseURL: cfg.LLMBaseURL, APIKey: cfg.LLMAPIKey, Model: cfg.LLMModel})
			if err != nil {
				log.Warn().Err(err).Msg("review model unavailable; using rule checks only")
			} else {
				a.reviewer.Client = p
				a.reviewer.Model = cfg.LLMModel
			}
		}
		if cfg.CacheDir != "" {
			if cfg.CacheClear {
				if err := cache.ClearDir(cfg.CacheDir); err != nil {
					log.Warn().Err(err).Msg("cache clear failed")
				}
			}
			if cfg.CacheMaxAge > 0 {
				if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
					log.Warn().Err(err).Msg("cache purge failed")
				} else if n > 0 {
					log.Debug().Int("removed", n).Msg("cache purged")
				}
			}
			a.reviewer.Cache = &cache.Store{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		}
	}
	return a, nil
}

// Close releases resources held by the App. Image staging is scoped to Run
// and cleaned up there.
func (a *App) Close() {}

// Generate describes the items and assembles the report in memory.
func (a *App) Generate(req brief.Request) (Result, error) {
	id, err := a.newID()
	if err != nil {
		return Result{}, fmt.Errorf("document id: %w", err)
	}
	syn := synth.New(a.resolver)
	batch := syn.DescribeBatch(req.SynthItems())
	rep := sections.New(a.resolver).Assemble(sections.Input{
		Header:     req.Header(),
		SealNumber: req.SealNumber,
		Batch:      batch,
		Captions:   req.Captions(),
	})
	return Result{
		DocumentID:  id,
		SealNumber:  req.SealNumber,
		GeneratedAt: a.now().UTC(),
		Batch:       batch,
		Report:      rep,
		Findings:    validate.CheckReport(batch, rep.Blocks),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	// 1) Read and validate the request
	req, err := brief.LoadRequest(a.cfg.InputPath)
	if err != nil {
		return err
	}
	if err := validate.ValidateRequest(req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				log.Error().Str("field", f.Field).Msg(f.Message)
			}
		}
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// 2) Describe items and assemble sections
	res, err := a.Generate(req)
	if err != nil {
		return err
	}
	log.Info().Str("profile", res.Report.Profile.String()).Int("items", len(res.Batch.Items)).Msg("report assembled")
	malformed := res.Batch.Malformed()
	for _, m := range malformed {
		log.Warn().Str("label", m.Label).Str("code", m.Code).Msg(m.Reason)
	}
	if len(malformed) > 0 && a.cfg.Strict {
		return fmt.Errorf("%w: %d of %d", ErrMalformedItems, len(malformed), len(res.Batch.Items))
	}
	for _, f := range res.Findings {
		log.Warn().Str("kind", f.Kind).Str("where", f.Where).Msg(f.Detail)
	}

	// 3) Stage illustrations for the writers
	images, err := stageImages(req.Images, filepath.Dir(a.cfg.InputPath))
	if err != nil {
		return err
	}
	defer func() {
		if err := images.Close(); err != nil {
			log.Warn().Err(err).Msg("image staging cleanup")
		}
	}()

	// 4) Write outputs
	files, err := a.writeOutputs(res, images)
	if err != nil {
		return err
	}

	// 5) Optional review sidecar
	if a.reviewer != nil {
		rv := a.reviewer.Review(ctx, res.Batch)
		p := reviewSidecarPath(a.cfg.OutputPath)
		if err := writeJSON(p, rv); err != nil {
			log.Warn().Err(err).Msg("write review")
		} else {
			files["review.json"] = p
			log.Info().Str("out", p).Int("issues", len(rv.Issues)).Msg("wrote review")
		}
	}

	// 6) Optional bundle
	files["request"+filepath.Ext(a.cfg.InputPath)] = a.cfg.InputPath
	if dir, err := exportBundle(a.cfg, req.SealNumber, files); err != nil {
		log.Warn().Err(err).Msg("bundle export failed")
	} else if dir != "" {
		log.Info().Str("dir", dir).Msg("wrote bundle")
	}
	return nil
}

// writeOutputs writes the Markdown report and every enabled sidecar, and
// returns bundle names mapped to the written paths.
func (a *App) writeOutputs(res Result, images *imageStage) (map[string]string, error) {
	out := a.cfg.OutputPath
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("output dir: %w", err)
		}
	}
	blocks := res.Report.Blocks
	footer := footerText(res.DocumentID, res.GeneratedAt)
	files := map[string]string{}

	md := appendFooter(renderMarkdown(blocks, images), res.DocumentID, res.GeneratedAt)
	if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	files["laudo.md"] = out
	log.Info().Str("out", out).Msg("wrote output")

	if a.cfg.EnablePDF {
		p := siblingPath(out, ".pdf")
		if err := writePDF(blocks, images, footer, p); err != nil {
			return nil, fmt.Errorf("write pdf: %w", err)
		}
		files["laudo.pdf"] = p
		log.Info().Str("out", p).Msg("wrote pdf")
	}
	if a.cfg.EnableHTML {
		p := siblingPath(out, ".html")
		b, err := renderHTML(blocks, images, footer)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return nil, fmt.Errorf("write html: %w", err)
		}
		files["laudo.html"] = p
		log.Info().Str("out", p).Msg("wrote html")
	}
	if a.cfg.EnableBlocks {
		p := siblingPath(out, ".blocks.json")
		if err := writeJSON(p, blocks); err != nil {
			return nil, fmt.Errorf("write blocks: %w", err)
		}
		files["blocks.json"] = p
	}

	meta := manifestMeta{
		DocumentID:  res.DocumentID,
		SealNumber:  res.SealNumber,
		Profile:     res.Report.Profile.String(),
		ItemCount:   len(res.Batch.Items),
		Vocabulary:  a.vocabName,
		Version:     BuildVersion,
		GeneratedAt: res.GeneratedAt,
	}
	for _, m := range res.Batch.Malformed() {
		meta.Malformed = append(meta.Malformed, m.Label)
	}
	data, err := marshalManifestJSON(meta, buildManifestItems(res.Batch), res.Findings)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	mp := manifestSidecarPath(out)
	if err := os.WriteFile(mp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	files["manifest.json"] = mp
	return files, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
