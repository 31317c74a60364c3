// Package aggregate groups constatação subitem references per substance
// family and renders them as Portuguese lists.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/golaudo/internal/synth"
	"github.com/hyperifyio/golaudo/internal/vocab"
)

// FamilyOf classifies a material code. It is satisfied by *lexical.Resolver.
type FamilyOf interface {
	Family(code string) (vocab.Family, bool)
}

// Groups maps each present family to its distinct, ordered references.
type Groups map[vocab.Family][]string

// GroupReferences merges the references of every item into per-family
// lists. Items with an unknown material belong to no family.
func GroupReferences(items []synth.Item, f FamilyOf) Groups {
	raw := map[vocab.Family][]string{}
	for _, it := range items {
		fam, ok := f.Family(it.Material)
		if !ok {
			continue
		}
		raw[fam] = append(raw[fam], it.Reference)
	}
	out := Groups{}
	for fam, refs := range raw {
		out[fam] = Distinct(refs)
	}
	return out
}

// Distinct trims, drops empty values, de-duplicates and orders references.
func Distinct(refs []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

// Compare orders dotted references segment by segment, numerically where
// both segments are numbers, so "2.1.2" sorts before "2.1.10".
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// JoinList joins values the Portuguese way: "a", "a e b", "a, b e c".
func JoinList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " e " + values[len(values)-1]
}

// Subitems renders "subitem X" or "subitens X e Y".
func Subitems(refs []string) string {
	if len(refs) == 1 {
		return "subitem " + refs[0]
	}
	return "subitens " + JoinList(refs)
}

// Dedupe keeps the first occurrence of each entry.
func Dedupe(entries []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		key := strings.TrimSpace(e)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
