// Package document is the plain output model handed to document writers:
// ordered blocks of styled paragraphs. It carries no rendering logic.
package document

import (
	"fmt"
	"strings"
)

// Alignment of a paragraph.
type Alignment int

const (
	Left Alignment = iota
	Right
	Center
	Justify
)

var alignmentNames = [...]string{"left", "right", "center", "justify"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return "left"
	}
	return alignmentNames[a]
}

// MarshalText encodes the alignment by name.
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (a *Alignment) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range alignmentNames {
		if n == s {
			*a = Alignment(i)
			return nil
		}
	}
	return fmt.Errorf("unknown alignment %q", s)
}

// Default spacing after a paragraph, in points.
const DefaultSpaceAfter = 6.0

// Paragraph is one run of text with its style.
type Paragraph struct {
	Text       string    `json:"text"`
	Alignment  Alignment `json:"alignment"`
	Bold       bool      `json:"bold"`
	SpaceAfter float64   `json:"space_after"`
	// Figure is the 1-based illustration shown above this paragraph, 0 for none.
	Figure int `json:"figure,omitempty"`
}

// Block is a section: an optional heading and its paragraphs.
// Level 0 is the document title, 1 a numbered section, 2+ subsections.
type Block struct {
	Heading    string      `json:"heading,omitempty"`
	Level      int         `json:"level"`
	Bold       bool        `json:"bold"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Body is a justified paragraph with default spacing.
func Body(text string) Paragraph {
	return Paragraph{Text: text, Alignment: Justify, SpaceAfter: DefaultSpaceAfter}
}

// Centered is a centered paragraph.
func Centered(text string, bold bool) Paragraph {
	return Paragraph{Text: text, Alignment: Center, Bold: bold, SpaceAfter: DefaultSpaceAfter}
}

// Section builds a bold block with justified body paragraphs.
func Section(heading string, level int, texts ...string) Block {
	b := Block{Heading: heading, Level: level, Bold: true, Paragraphs: make([]Paragraph, 0, len(texts))}
	for _, t := range texts {
		b.Paragraphs = append(b.Paragraphs, Body(t))
	}
	return b
}

// Text flattens blocks into plain text, one paragraph per line.
func Text(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Heading != "" {
			sb.WriteString(b.Heading)
			sb.WriteString("\n")
		}
		for _, p := range b.Paragraphs {
			sb.WriteString(p.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Find returns the first block whose heading starts with prefix.
func Find(blocks []Block, prefix string) (Block, bool) {
	for _, b := range blocks {
		if strings.HasPrefix(b.Heading, prefix) {
			return b, true
		}
	}
	return Block{}, false
}
