package app

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/hyperifyio/golaudo/internal/document"
)

const (
	pdfFont       = "Helvetica"
	pdfBodySize   = 11.0
	pdfLineHeight = 5.5
	pdfImageWidth = 100.0
	// points to millimetres
	ptToMM = 0.3528
)

// pdfEncoder converts UTF-8 to Windows-1252 for the core fonts. Characters
// outside the code page are replaced rather than failing the document.
var pdfEncoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

func pdfText(s string) string {
	out, err := pdfEncoder.String(s)
	if err != nil {
		return s
	}
	return out
}

func pdfAlign(a document.Alignment) string {
	switch a {
	case document.Right:
		return "R"
	case document.Center:
		return "C"
	case document.Justify:
		return "J"
	default:
		return "L"
	}
}

// writePDF lays out blocks on A4 pages with a footer carrying the document
// id and page numbers. Figures come from the staging directory.
func writePDF(blocks []document.Block, images *imageStage, footer, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 10, pdfText(footer)+" - p. "+strconv.Itoa(pdf.PageNo())+"/{nb}", "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, blk := range blocks {
		if blk.Heading != "" {
			size := pdfBodySize + 1
			if blk.Level > 1 {
				size = pdfBodySize
			}
			style := ""
			if blk.Bold {
				style = "B"
			}
			pdf.SetFont(pdfFont, style, size)
			pdf.Ln(2)
			pdf.MultiCell(0, pdfLineHeight+1, pdfText(blk.Heading), "", "L", false)
			pdf.Ln(1)
		}
		for _, p := range blk.Paragraphs {
			if im, ok := images.Get(p.Figure); ok {
				placeImage(pdf, im)
			}
			style := ""
			if p.Bold {
				style = "B"
			}
			size := pdfBodySize
			if blk.Level == 0 {
				size = 16
			}
			pdf.SetFont(pdfFont, style, size)
			pdf.MultiCell(0, pdfLineHeight, pdfText(p.Text), "", pdfAlign(p.Alignment), false)
			if p.SpaceAfter > 0 {
				pdf.Ln(p.SpaceAfter * ptToMM)
			}
		}
	}
	return pdf.OutputFileAndClose(outPath)
}

// placeImage centers one figure at a fixed width, keeping its aspect ratio.
func placeImage(pdf *gofpdf.Fpdf, im stagedImage) {
	opts := gofpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(im.Staged, opts)
	if pdf.Err() || info == nil {
		log.Warn().Err(pdf.Error()).Str("path", im.Source).Msg("pdf: image not embedded")
		pdf.ClearError()
		return
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	w := pdfImageWidth
	if avail := pageW - left - right; w > avail {
		w = avail
	}
	x := left + (pageW-left-right-w)/2
	pdf.ImageOptions(im.Staged, x, 0, w, 0, true, opts, 0, "")
	pdf.Ln(2)
}
