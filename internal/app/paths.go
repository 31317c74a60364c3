package app

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hyperifyio/golaudo/internal/vocab"
)

// siblingPath swaps the extension of the Markdown output, so "out/laudo.md"
// with ".pdf" becomes "out/laudo.pdf".
func siblingPath(outputPath, ext string) string {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return base + ext
}

func manifestSidecarPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

func reviewSidecarPath(outputPath string) string {
	return outputPath + ".review.json"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify folds accents and keeps lower-case ASCII letters and digits,
// joined by hyphens. "LC-2024/Ação" becomes "lc-2024-acao".
func slugify(s string) string {
	s = nonSlug.ReplaceAllString(vocab.NormalizeKey(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "laudo"
	}
	return s
}
