package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/golaudo/internal/document"
	"github.com/hyperifyio/golaudo/internal/synth"
)

// Finding is one consistency problem in a rendered report.
type Finding struct {
	Kind   string `json:"kind"`
	Where  string `json:"where"`
	Detail string `json:"detail"`
}

// Finding kinds.
const (
	KindTerminator  = "terminator"
	KindPlaceholder = "placeholder"
	KindNumbering   = "numbering"
)

var (
	placeholderRe = regexp.MustCompile(`\[(?:UNKNOWN (?:MATERIAL|PACKAGING) CODE: [^\]]*|ERROR IN ITEM DESCRIPTION [^\]]*)\]`)
	numberedRe    = regexp.MustCompile(`^(\d+(?:\.\d+)*) `)
)

// CheckTerminators verifies that every described item but the last ends
// with ";" and the last ends with ".". Items replaced by the error
// placeholder are skipped.
func CheckTerminators(batch synth.BatchResult) []Finding {
	var out []Finding
	n := len(batch.Items)
	for i, r := range batch.Items {
		if r.Sentence == synth.ErrorPlaceholder(r.Label) {
			continue
		}
		want := ";"
		if i == n-1 {
			want = "."
		}
		if !strings.HasSuffix(r.Sentence, want) {
			out = append(out, Finding{Kind: KindTerminator, Where: r.Label, Detail: "expected sentence to end with " + strconv.Quote(want)})
		}
	}
	return out
}

// CheckPlaceholders reports every error marker left in the blocks.
func CheckPlaceholders(blocks []document.Block) []Finding {
	var out []Finding
	for _, b := range blocks {
		for _, p := range b.Paragraphs {
			for _, m := range placeholderRe.FindAllString(p.Text, -1) {
				out = append(out, Finding{Kind: KindPlaceholder, Where: b.Heading, Detail: m})
			}
		}
	}
	return out
}

// CheckNumbering verifies that numbered headings advance by one at every
// level: "4", "4.1", "4.2", "5", "5.1".
func CheckNumbering(blocks []document.Block) []Finding {
	var out []Finding
	var prev []int
	for _, b := range blocks {
		m := numberedRe.FindStringSubmatch(b.Heading)
		if m == nil {
			continue
		}
		cur := parseNumber(m[1])
		if !follows(prev, cur) {
			out = append(out, Finding{Kind: KindNumbering, Where: b.Heading, Detail: "does not follow " + strconv.Quote(joinNumber(prev))})
		}
		prev = cur
	}
	return out
}

// CheckReport runs every report check.
func CheckReport(batch synth.BatchResult, blocks []document.Block) []Finding {
	var out []Finding
	out = append(out, CheckTerminators(batch)...)
	out = append(out, CheckPlaceholders(blocks)...)
	out = append(out, CheckNumbering(blocks)...)
	return out
}

func parseNumber(s string) []int {
	parts := strings.Split(s, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, _ := strconv.Atoi(p)
		out = append(out, n)
	}
	return out
}

func joinNumber(n []int) string {
	parts := make([]string, 0, len(n))
	for _, v := range n {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ".")
}

// follows reports whether cur is a valid successor of prev: a first child
// (prev + ".1"), or the next sibling of prev or one of its ancestors.
func follows(prev, cur []int) bool {
	if len(prev) == 0 {
		return len(cur) == 1 && cur[0] == 1
	}
	if len(cur) == len(prev)+1 {
		return equal(cur[:len(prev)], prev) && cur[len(cur)-1] == 1
	}
	if len(cur) > len(prev) {
		return false
	}
	k := len(cur) - 1
	return equal(cur[:k], prev[:k]) && cur[k] == prev[k]+1
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
