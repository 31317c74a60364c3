// Package verify runs an optional review over the item sentences. It
// reports issues only; the report text is never changed.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/aggregate"
	"github.com/hyperifyio/golaudo/internal/budget"
	"github.com/hyperifyio/golaudo/internal/cache"
	"github.com/hyperifyio/golaudo/internal/llm"
	"github.com/hyperifyio/golaudo/internal/synth"
)

// Issue sources.
const (
	SourceRules = "rules"
	SourceModel = "model"
)

// Issue is one remark about one item.
type Issue struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// Result is the review output written next to the report.
type Result struct {
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
	// Model is empty when only the rule checks ran.
	Model string `json:"model,omitempty"`
}

// Reviewer checks item sentences with fixed rules and, when a client and
// model are set, with a language model.
type Reviewer struct {
	Client llm.Client
	Model  string
	Cache  *cache.Store
}

// Review never fails: a model error falls back to the rule checks alone.
func (r *Reviewer) Review(ctx context.Context, batch synth.BatchResult) Result {
	issues := ruleIssues(batch)
	res := Result{}
	if r != nil && r.Client != nil && strings.TrimSpace(r.Model) != "" {
		if extra, err := r.modelIssues(ctx, batch); err != nil {
			log.Warn().Err(err).Msg("model review failed; using rule checks only")
		} else {
			issues = append(issues, extra...)
			res.Model = r.Model
		}
	}
	sort.SliceStable(issues, func(i, j int) bool { return aggregate.Compare(issues[i].Label, issues[j].Label) < 0 })
	res.Issues = issues
	res.Summary = summarize(len(batch.Items), issues)
	return res
}

// ruleIssues checks agreement between quantity and the plural markers of
// the sentence template.
func ruleIssues(batch synth.BatchResult) []Issue {
	var out []Issue
	add := func(label, msg string) {
		out = append(out, Issue{Label: label, Message: msg, Source: SourceRules})
	}
	for _, it := range batch.Items {
		if !it.OK() {
			add(it.Label, "malformed: "+it.Reason)
			continue
		}
		s := it.Sentence
		plural := it.Item.Quantity > 1
		if plural != strings.Contains(s, " porções ") {
			add(it.Label, "noun does not agree with quantity")
		}
		if plural != strings.Contains(s, "acondicionadas, individualmente, em") {
			add(it.Label, "packaging participle does not agree with quantity")
		}
		if plural != strings.Contains(s, "referentes à amostra") {
			add(it.Label, "reference participle does not agree with quantity")
		}
		for _, d := range it.Diagnostics {
			add(it.Label, d)
		}
	}
	return out
}

type modelReply struct {
	Issues []struct {
		Label   string `json:"label"`
		Message string `json:"message"`
	} `json:"issues"`
}

const systemPrompt = `You proofread Brazilian Portuguese forensic report sentences. Respond with strict JSON only: {"issues":[{"label":string,"message":string}]}. Report only grammar or agreement errors. Return {"issues":[]} when the sentences are correct.`

// replyReserve is the output budget kept free for the model's JSON reply.
const replyReserve = 1024

func promptLine(it synth.ItemResult) string {
	return it.Label + ": " + it.Sentence + "\n"
}

func userPrompt(items []synth.ItemResult) string {
	var sb strings.Builder
	sb.WriteString("Sentences:\n")
	for _, it := range items {
		sb.WriteString(promptLine(it))
	}
	return sb.String()
}

// modelIssues sends the sentences in as few requests as the model's context
// allows. Any failed request fails the whole model pass.
func (r *Reviewer) modelIssues(ctx context.Context, batch synth.BatchResult) ([]Issue, error) {
	lines := make([]string, len(batch.Items))
	for i, it := range batch.Items {
		lines[i] = promptLine(it)
	}
	limit := budget.RemainingContextWithHeadroom(r.Model, replyReserve, budget.EstimateTokens(systemPrompt)+budget.EstimateTokens("Sentences:\n"))
	chunks := budget.Pack(lines, limit)
	if len(chunks) > 1 {
		log.Debug().Int("requests", len(chunks)).Int("limit", limit).Msg("review split to fit context")
	}
	var out []Issue
	for _, c := range chunks {
		got, err := r.reviewChunk(ctx, batch.Items[c[0]:c[1]])
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}

func (r *Reviewer) reviewChunk(ctx context.Context, items []synth.ItemResult) ([]Issue, error) {
	user := userPrompt(items)
	key := cache.Key(r.Model, systemPrompt+"\n\n"+user)
	var raw []byte
	if r.Cache != nil {
		if b, ok, _ := r.Cache.Get(ctx, key); ok {
			raw = b
			log.Debug().Str("key", key[:12]).Msg("review cache hit")
		}
	}
	if raw == nil {
		out, err := llm.Ask(ctx, r.Client, r.Model, systemPrompt, user)
		if err != nil {
			return nil, fmt.Errorf("review request: %w", err)
		}
		raw = []byte(stripFence(out))
	}
	var rep modelReply
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("review reply: %w", err)
	}
	if r.Cache != nil {
		if err := r.Cache.Save(ctx, key, raw); err != nil {
			log.Warn().Err(err).Msg("review cache save")
		}
	}
	labels := map[string]struct{}{}
	for _, it := range items {
		labels[it.Label] = struct{}{}
	}
	var out []Issue
	for _, is := range rep.Issues {
		label := strings.TrimSpace(is.Label)
		msg := strings.TrimSpace(is.Message)
		if _, ok := labels[label]; !ok || msg == "" {
			continue
		}
		out = append(out, Issue{Label: label, Message: msg, Source: SourceModel})
	}
	return out, nil
}

// stripFence removes a ```json fence some models wrap replies in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func summarize(items int, issues []Issue) string {
	if len(issues) == 0 {
		return fmt.Sprintf("%d items reviewed; no issues.", items)
	}
	flagged := map[string]struct{}{}
	for _, is := range issues {
		flagged[is.Label] = struct{}{}
	}
	return fmt.Sprintf("%d items reviewed; %d issues on %d items.", items, len(issues), len(flagged))
}
