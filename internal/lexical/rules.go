package lexical

import (
	"strings"

	"github.com/hyperifyio/golaudo/internal/vocab"
)

// Rule is one entry of the pluralization table. Rules are evaluated in
// order and the first whose Match returns true wins.
type Rule struct {
	Name  string
	Match func(word string) bool
	Apply func(word string) string
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

// baseRules follow the irregular lexicon.
var baseRules = []Rule{
	{
		Name:  "m>ns",
		Match: func(w string) bool { return strings.HasSuffix(w, "m") },
		Apply: func(w string) string { return strings.TrimSuffix(w, "m") + "ns" },
	},
	{
		// -ão has three plural endings; only the lexicon can pick one.
		Name:  "ão|ões",
		Match: func(w string) bool { return hasAnySuffix(w, "ão", "ões") },
		Apply: func(w string) string { return w },
	},
	{
		Name:  "l>is",
		Match: func(w string) bool { return hasAnySuffix(w, "al", "el", "ol", "ul") },
		Apply: func(w string) string { return w[:len(w)-1] + "is" },
	},
	{
		Name:  "r|z|s>es",
		Match: func(w string) bool { return hasAnySuffix(w, "r", "z", "s") },
		Apply: func(w string) string { return w + "es" },
	},
	{
		Name:  "default",
		Match: func(string) bool { return true },
		Apply: func(w string) string { return w + "s" },
	},
}

func irregularRule(v *vocab.Vocabulary) Rule {
	return Rule{
		Name: "irregular",
		Match: func(w string) bool {
			_, ok := v.IrregularPlural(w)
			return ok
		},
		Apply: func(w string) string {
			p, _ := v.IrregularPlural(w)
			return p
		},
	}
}
