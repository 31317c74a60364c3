// Package lexical turns coded item fields into Portuguese noun phrases:
// materials, packagings with an optional color clause, gender agreement of
// colors and pluralization by quantity.
package lexical

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/golaudo/internal/vocab"
)

// colorClause separates a packaging noun from its color.
const colorClause = " de cor "

// Resolver resolves codes against a vocabulary. It holds no mutable state.
type Resolver struct {
	vocab     *vocab.Vocabulary
	rules     []Rule
	invariant map[string]struct{}
}

// New builds a Resolver. A nil vocabulary selects vocab.Default().
func New(v *vocab.Vocabulary) *Resolver {
	if v == nil {
		v = vocab.Default()
	}
	r := &Resolver{vocab: v, invariant: map[string]struct{}{}}
	for _, p := range v.InvariantPhrases() {
		r.invariant[p] = struct{}{}
	}
	r.rules = append([]Rule{irregularRule(v)}, baseRules...)
	return r
}

// Vocabulary returns the tables the resolver was built with.
func (r *Resolver) Vocabulary() *vocab.Vocabulary { return r.vocab }

// UnknownMaterial is the placeholder rendered for an unknown material code.
func UnknownMaterial(code string) string {
	return "[UNKNOWN MATERIAL CODE: " + code + "]"
}

// UnknownPackaging is the placeholder rendered for an unknown packaging code.
func UnknownPackaging(code string) string {
	return "[UNKNOWN PACKAGING CODE: " + code + "]"
}

// Material returns the canonical phrase for code. Unknown codes yield a
// placeholder and ok=false.
func (r *Resolver) Material(code string) (phrase string, ok bool) {
	m, ok := r.vocab.Material(code)
	if !ok {
		return UnknownMaterial(code), false
	}
	return m.Name, true
}

// Family classifies a material code.
func (r *Resolver) Family(code string) (vocab.Family, bool) {
	m, ok := r.vocab.Material(code)
	if !ok {
		return "", false
	}
	return m.Family, true
}

// Packaging returns the singular packaging phrase, with a color clause when
// the packaging accepts one and color is non-empty.
func (r *Resolver) Packaging(code, color string) (phrase string, ok bool) {
	p, ok := r.vocab.Packaging(code)
	if !ok {
		return UnknownPackaging(code), false
	}
	if !p.Colored {
		return p.Name, true
	}
	if c := r.Color(color); c != "" {
		return p.Name + colorClause + c, true
	}
	return p.Name, true
}

// Color resolves a color code or free text to its feminine form.
// Unknown tokens are kept verbatim, lower-cased.
func (r *Resolver) Color(token string) string {
	t := strings.TrimSpace(token)
	if t == "" {
		return ""
	}
	c, ok := r.vocab.Color(t)
	if !ok {
		c = cases.Lower(language.BrazilianPortuguese).String(t)
	}
	return r.agree(c)
}

// agree applies feminine agreement: packaging nouns are feminine here.
func (r *Resolver) agree(color string) string {
	if r.vocab.InvariantColor(color) {
		return color
	}
	if strings.HasSuffix(color, "o") {
		return strings.TrimSuffix(color, "o") + "a"
	}
	return color
}

// Pluralize returns phrase in the plural when qty > 1. Invariant phrases and
// the color clause are left untouched.
func (r *Resolver) Pluralize(phrase string, qty int) string {
	if qty == 1 || phrase == "" {
		return phrase
	}
	base, color, hasColor := strings.Cut(phrase, colorClause)
	if r.isInvariant(base) {
		return phrase
	}
	plural := r.applyRules(base)
	if hasColor {
		return plural + colorClause + color
	}
	return plural
}

func (r *Resolver) isInvariant(phrase string) bool {
	_, ok := r.invariant[strings.TrimSpace(phrase)]
	return ok
}

func (r *Resolver) applyRules(word string) string {
	for _, rule := range r.rules {
		if rule.Match(word) {
			return rule.Apply(word)
		}
	}
	return word
}

// Rules returns the ordered pluralization rules in evaluation order.
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}
