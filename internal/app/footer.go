package app

import (
	"strings"
	"time"
)

// footerText is the identification line printed at the bottom of every
// output: document id, generation time and tool version.
func footerText(docID string, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Documento ")
	b.WriteString(docID)
	b.WriteString(" - gerado em ")
	b.WriteString(generatedAt.UTC().Format("02/01/2006 15:04 MST"))
	b.WriteString(" - golaudo ")
	b.WriteString(BuildVersion)
	return b.String()
}

// appendFooter appends the identification line to Markdown output.
func appendFooter(markdown, docID string, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(markdown, "\n"))
	b.WriteString("\n\n---\n")
	b.WriteString(footerText(docID, generatedAt))
	b.WriteString("\n")
	return b.String()
}
