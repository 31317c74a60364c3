package app

import (
	"bytes"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperifyio/golaudo/internal/document"
)

const htmlStyle = `body{font-family:Arial,Helvetica,sans-serif;max-width:46em;margin:2em auto;line-height:1.4}
p{margin:0 0 .5em}
.center{text-align:center}.right{text-align:right}.justify{text-align:justify}
footer{margin-top:2em;font-size:.8em;color:#555;text-align:center}
img{max-width:60%}`

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// renderHTML builds a standalone HTML page from the blocks. Text is added
// as text nodes, so the renderer escapes it.
func renderHTML(blocks []document.Block, images *imageStage, footer string) ([]byte, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html, attr("lang", "pt-BR"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	title := element(atom.Title)
	title.AppendChild(textNode("Laudo Pericial"))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(textNode(htmlStyle))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	for _, blk := range blocks {
		if blk.Heading != "" {
			h := element(headingAtom(blk.Level))
			h.AppendChild(textNode(blk.Heading))
			body.AppendChild(h)
		}
		for i, p := range blk.Paragraphs {
			if im, ok := images.Get(p.Figure); ok {
				fig := element(atom.Figure, attr("class", "center"))
				fig.AppendChild(element(atom.Img, attr("src", im.Source), attr("alt", p.Text)))
				body.AppendChild(fig)
			}
			var n *html.Node
			if blk.Level == 0 {
				n = element(headingAtom(i), attr("class", "center"))
			} else {
				n = element(atom.P, attr("class", p.Alignment.String()))
			}
			if p.SpaceAfter > 0 {
				n.Attr = append(n.Attr, attr("style", "margin-bottom:"+strconv.FormatFloat(p.SpaceAfter, 'f', -1, 64)+"pt"))
			}
			if p.Bold && blk.Level != 0 {
				strong := element(atom.Strong)
				strong.AppendChild(textNode(p.Text))
				n.AppendChild(strong)
			} else {
				n.AppendChild(textNode(p.Text))
			}
			body.AppendChild(n)
		}
	}
	if footer != "" {
		f := element(atom.Footer)
		f.AppendChild(textNode(footer))
		body.AppendChild(f)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// headingAtom maps a block level to h1..h4.
func headingAtom(level int) atom.Atom {
	switch {
	case level <= 0:
		return atom.H1
	case level == 1:
		return atom.H2
	case level == 2:
		return atom.H3
	default:
		return atom.H4
	}
}
