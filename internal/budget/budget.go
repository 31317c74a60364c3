// Package budget estimates prompt sizes so the review pass can split a long
// batch into requests that fit the model's context window.
package budget

import (
	"math"
	"strings"
)

// EstimateTokensFromChars converts a byte count into an estimated token
// count at about four bytes per token. Accented Portuguese text takes two
// bytes per letter, so the estimate errs high. The result is at least 1 when
// n > 0.
func EstimateTokensFromChars(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns an estimated context window for a model name.
// Unknown models fall back to 8192.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"), strings.Contains(name, "-mini"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	}
	return 8192
}

// HeadroomTokens is the larger of 5% of the model context or 512 tokens,
// kept free for message framing and tokenizer drift.
func HeadroomTokens(modelName string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// RemainingContextWithHeadroom returns the input tokens left once output
// and headroom are reserved. It is never negative.
func RemainingContextWithHeadroom(modelName string, reservedForOutput, promptTokens int) int {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	rem := ModelContextTokens(modelName) - HeadroomTokens(modelName) - reservedForOutput - promptTokens
	if rem < 0 {
		return 0
	}
	return rem
}

// Pack groups lines into consecutive chunks whose estimated size stays within
// limit tokens. A line larger than limit gets a chunk of its own. It returns
// index ranges [start, end) into lines.
func Pack(lines []string, limit int) [][2]int {
	var out [][2]int
	start, used := 0, 0
	for i, l := range lines {
		n := EstimateTokens(l)
		if i > start && used+n > limit {
			out = append(out, [2]int{start, i})
			start, used = i, 0
		}
		used += n
	}
	if start < len(lines) {
		out = append(out, [2]int{start, len(lines)})
	}
	return out
}

var knownModelMax = map[string]int{
	"gpt-4o":             128_000,
	"gpt-4o-mini":        128_000,
	"gpt-4-turbo":        128_000,
	"gpt-3.5-turbo":      16_384,
	"llama-3":            8_192,
	"llama-3.1":          128_000,
	"openai/gpt-oss-20b": 4_096,
	"gpt-oss-20b":        4_096,
}
