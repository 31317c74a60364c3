package app

import (
	"strings"

	"github.com/hyperifyio/golaudo/internal/document"
)

// renderMarkdown writes blocks as Markdown. Level 0 blocks become the
// title, numbered sections use "##" and deeper levels add a "#" each.
func renderMarkdown(blocks []document.Block, images *imageStage) string {
	var b strings.Builder
	for _, blk := range blocks {
		if blk.Level == 0 {
			for i, p := range blk.Paragraphs {
				if i == 0 {
					b.WriteString("# " + p.Text + "\n\n")
				} else {
					b.WriteString("**" + p.Text + "**\n\n")
				}
			}
			continue
		}
		if blk.Heading != "" {
			b.WriteString(strings.Repeat("#", blk.Level+1))
			b.WriteString(" ")
			b.WriteString(blk.Heading)
			b.WriteString("\n\n")
		}
		for _, p := range blk.Paragraphs {
			if im, ok := images.Get(p.Figure); ok {
				b.WriteString("![" + escapeMarkdownText(p.Text) + "](" + linkDestination(im.Source) + ")\n\n")
			}
			text := escapeMarkdownText(p.Text)
			if p.Bold {
				text = "**" + text + "**"
			}
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
)

// escapeMarkdownText escapes the characters that would start emphasis, code,
// links or HTML in free text such as person names and colors.
func escapeMarkdownText(s string) string {
	return markdownEscaper.Replace(s)
}

// linkDestination wraps a path in angle brackets so spaces and parentheses
// stay inside the link target.
func linkDestination(path string) string {
	return "<" + strings.NewReplacer("<", `\<`, ">", `\>`, "\n", " ").Replace(path) + ">"
}
