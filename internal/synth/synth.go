package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/lexical"
)

// Item is one seized-material record as submitted.
type Item struct {
	Quantity  int    `json:"quantity" yaml:"quantity"`
	Material  string `json:"material" yaml:"material"`
	Packaging string `json:"packaging" yaml:"packaging"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Reference string `json:"reference" yaml:"reference"`
	Person    string `json:"person,omitempty" yaml:"person,omitempty"`
	IsLast    bool   `json:"is_last" yaml:"is_last"`
}

// Status tells whether an item was described cleanly.
type Status int

const (
	StatusOK Status = iota
	StatusMalformed
)

func (s Status) String() string {
	if s == StatusMalformed {
		return "malformed"
	}
	return "ok"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ItemResult is the outcome for one item. Malformed items still carry a
// sentence with a visible placeholder so a reviewer can spot them in place.
type ItemResult struct {
	Label    string `json:"label"`
	Item     Item   `json:"item"`
	Sentence string `json:"sentence"`
	Status   Status `json:"status"`
	// Code is the offending input code for malformed items.
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
	// Diagnostics are non-fatal notes, such as a numeral rendered as digits.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// OK reports whether the item was described without problems.
func (r ItemResult) OK() bool { return r.Status == StatusOK }

// BatchResult collects every item in submission order.
type BatchResult struct {
	Items []ItemResult `json:"items"`
}

// Malformed returns the items that need attention.
func (b BatchResult) Malformed() []ItemResult {
	var out []ItemResult
	for _, r := range b.Items {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Sentences returns the rendered sentence of every item, in order.
func (b BatchResult) Sentences() []string {
	out := make([]string, 0, len(b.Items))
	for _, r := range b.Items {
		out = append(out, r.Sentence)
	}
	return out
}

// Synthesizer writes one Portuguese sentence per item.
type Synthesizer struct {
	Resolver *lexical.Resolver
	// LabelPrefix numbers items as "<prefix>.<n>". Defaults to "2", the
	// material section of the report.
	LabelPrefix string
}

// New returns a Synthesizer over r. A nil resolver uses the default vocabulary.
func New(r *lexical.Resolver) *Synthesizer {
	if r == nil {
		r = lexical.New(nil)
	}
	return &Synthesizer{Resolver: r, LabelPrefix: "2"}
}

// ErrorPlaceholder is the sentence rendered when describing an item fails.
func ErrorPlaceholder(label string) string {
	return "[ERROR IN ITEM DESCRIPTION " + label + "]"
}

// MarkLast sets IsLast on the final item only.
func MarkLast(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].IsLast = i == len(out)-1
	}
	return out
}

// DescribeBatch describes every item, labelling them in order. One bad item
// never prevents the others from being described.
func (s *Synthesizer) DescribeBatch(items []Item) BatchResult {
	prefix := s.LabelPrefix
	if prefix == "" {
		prefix = "2"
	}
	res := BatchResult{Items: make([]ItemResult, 0, len(items))}
	for i, it := range items {
		label := prefix + "." + strconv.Itoa(i+1)
		res.Items = append(res.Items, s.Describe(label, it))
	}
	return res
}

// Describe renders one item. Unknown codes produce placeholders inside the
// sentence; any unexpected failure yields ErrorPlaceholder.
func (s *Synthesizer) Describe(label string, it Item) (res ItemResult) {
	res = ItemResult{Label: label, Item: it}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("label", label).Interface("panic", rec).Msg("item description failed")
			res.Sentence = ErrorPlaceholder(label)
			res.Status = StatusMalformed
			res.Reason = fmt.Sprint(rec)
		}
	}()
	sentence, err := s.compose(label, it, &res)
	if err != nil {
		log.Error().Err(err).Str("label", label).Msg("item description failed")
		res.Sentence = ErrorPlaceholder(label)
		res.Status = StatusMalformed
		res.Reason = err.Error()
		return res
	}
	res.Sentence = sentence
	if !res.OK() {
		log.Warn().Str("label", label).Str("code", res.Code).Str("reason", res.Reason).Msg("malformed item")
	}
	return res
}

func (s *Synthesizer) compose(label string, it Item, res *ItemResult) (string, error) {
	r := s.Resolver
	if r == nil {
		return "", fmt.Errorf("synthesizer has no resolver")
	}
	if it.Quantity < 1 {
		return "", fmt.Errorf("quantity must be at least 1, got %d", it.Quantity)
	}
	qty := it.Quantity

	material, ok := r.Material(it.Material)
	if !ok {
		res.Status = StatusMalformed
		res.Code = it.Material
		res.Reason = "unknown material code"
	}
	packaging, pkgOK := r.Packaging(it.Packaging, it.Color)
	if !pkgOK {
		res.Status = StatusMalformed
		if res.Code == "" {
			res.Code = it.Packaging
			res.Reason = "unknown packaging code"
		} else {
			res.Code += "," + it.Packaging
			res.Reason += "; unknown packaging code"
		}
	}

	words, ok := r.Vocabulary().Numeral(qty)
	if !ok {
		words = strconv.Itoa(qty)
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("numeral %d not in table; rendered as digits", qty))
		log.Debug().Str("label", label).Int("quantity", qty).Msg("numeral fallback to digits")
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(qty))
	b.WriteString(" (")
	b.WriteString(words)
	b.WriteString(") ")
	b.WriteString(r.Pluralize("porção", qty))
	b.WriteString(" de material ")
	b.WriteString(material)
	b.WriteString(", ")
	if qty == 1 {
		b.WriteString("acondicionada em ")
	} else {
		b.WriteString("acondicionadas, individualmente, em ")
	}
	if pkgOK {
		packaging = r.Pluralize(packaging, qty)
	}
	b.WriteString(packaging)
	b.WriteString(", ")
	if qty == 1 {
		b.WriteString("referente")
	} else {
		b.WriteString("referentes")
	}
	b.WriteString(" à amostra do subitem ")
	b.WriteString(strings.TrimSpace(it.Reference))
	b.WriteString(" do laudo de constatação supracitado")
	if p := strings.TrimSpace(it.Person); p != "" {
		b.WriteString(", relacionada a ")
		b.WriteString(p)
	}
	if it.IsLast {
		b.WriteString(".")
	} else {
		b.WriteString(";")
	}
	return b.String(), nil
}
