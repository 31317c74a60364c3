// Package sections assembles the ordered blocks of a laudo from a described
// batch. Numbering of the exams, results and conclusion sections follows the
// substance profile, computed once per batch.
package sections

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/aggregate"
	"github.com/hyperifyio/golaudo/internal/document"
	"github.com/hyperifyio/golaudo/internal/lexical"
	"github.com/hyperifyio/golaudo/internal/synth"
	"github.com/hyperifyio/golaudo/internal/template"
	"github.com/hyperifyio/golaudo/internal/vocab"
)

// Header carries the optional request fields shown in the history and
// closing sections.
type Header struct {
	Requisition       string
	ConstatacaoReport string
	Authority         string
	Examiner          string
	City              string
	Date              string
}

// Input is everything the assembler reads.
type Input struct {
	Header     Header
	SealNumber string
	Batch      synth.BatchResult
	// Captions of the illustrations, in order. Empty means no images.
	Captions []string
}

// Report is the assembled output.
type Report struct {
	Profile template.Profile
	Groups  aggregate.Groups
	Blocks  []document.Block
}

// Assembler renders reports against one resolver.
type Assembler struct {
	Resolver *lexical.Resolver
}

// New returns an Assembler. A nil resolver uses the default vocabulary.
func New(r *lexical.Resolver) *Assembler {
	if r == nil {
		r = lexical.New(nil)
	}
	return &Assembler{Resolver: r}
}

// Section headings.
const (
	Title          = "LAUDO PERICIAL"
	Subtitle       = "EXAME DEFINITIVO EM DROGAS"
	HistoryHeading = "1 HISTÓRICO"
	MaterialHead   = "2 MATERIAL RECEBIDO PARA EXAME"
	ObjectiveHead  = "3 OBJETIVO"
	ExamsHeading   = "4 EXAMES"
	ResultsHeading = "5 RESULTADOS"
	ConclusionHead = "6 CONCLUSÃO"
	CustodyHeading = "7 CUSTÓDIA DO MATERIAL"
	RefsHeading    = "8 REFERÊNCIAS"
)

// Assemble builds the full block list for in.
func (a *Assembler) Assemble(in Input) Report {
	items := make([]synth.Item, 0, len(in.Batch.Items))
	for _, r := range in.Batch.Items {
		items = append(items, r.Item)
	}
	profile := template.ClassifyItems(items, a.Resolver)
	groups := aggregate.GroupReferences(items, a.Resolver)
	log.Debug().Str("profile", profile.String()).Int("items", len(items)).Msg("assembling sections")

	var blocks []document.Block
	blocks = append(blocks, titleBlock())
	blocks = append(blocks, history(in.Header))
	blocks = append(blocks, material(in.Batch, in.Captions))
	blocks = append(blocks, objective())
	blocks = append(blocks, exams(profile)...)
	blocks = append(blocks, results(profile, groups)...)
	blocks = append(blocks, conclusion(profile, groups))
	blocks = append(blocks, custody(in.SealNumber))
	blocks = append(blocks, references(profile, items, a.Resolver.Vocabulary()))
	if c, ok := closing(in.Header); ok {
		blocks = append(blocks, c)
	}
	return Report{Profile: profile, Groups: groups, Blocks: blocks}
}

func titleBlock() document.Block {
	return document.Block{
		Level: 0,
		Bold:  true,
		Paragraphs: []document.Paragraph{
			document.Centered(Title, true),
			document.Centered(Subtitle, true),
		},
	}
}

func history(h Header) document.Block {
	var sb strings.Builder
	sb.WriteString("Em atendimento à requisição")
	if h.Requisition != "" {
		sb.WriteString(" " + h.Requisition)
	}
	if h.Authority != "" {
		sb.WriteString(", expedida por " + h.Authority)
	}
	sb.WriteString(", foi recebido neste Instituto o material descrito a seguir, objeto do laudo de constatação")
	if h.ConstatacaoReport != "" {
		sb.WriteString(" " + h.ConstatacaoReport)
	}
	sb.WriteString(", para a realização de exame definitivo.")
	return document.Section(HistoryHeading, 1, sb.String())
}

func material(batch synth.BatchResult, captions []string) document.Block {
	b := document.Section(MaterialHead, 1, "Foi recebido para exame o seguinte material:")
	for _, s := range batch.Sentences() {
		b.Paragraphs = append(b.Paragraphs, document.Body(s))
	}
	for i, c := range captions {
		p := document.Centered(figure(i+1, c), false)
		p.Figure = i + 1
		b.Paragraphs = append(b.Paragraphs, p)
	}
	return b
}

func figure(n int, caption string) string {
	s := "Figura " + strconv.Itoa(n)
	if caption = strings.TrimSpace(caption); caption != "" {
		s += " - " + caption
	}
	return s
}

func objective() document.Block {
	return document.Section(ObjectiveHead, 1,
		"Realizar exame definitivo no material recebido, com a finalidade de identificar a presença de substâncias de uso proscrito no Brasil.")
}

// exams renders "4 EXAMES" and its numbered subsections.
func exams(p template.Profile) []document.Block {
	out := []document.Block{{Heading: ExamsHeading, Level: 1, Bold: true}}
	fams := p.Families()
	if len(fams) == 0 {
		out = append(out,
			document.Block{Heading: "4.1 " + template.FallbackTestsHeading, Level: 2, Bold: true},
			document.Section("4.1.1 "+template.FallbackMacroHeading, 3, template.FallbackMacroProcedure),
		)
		return out
	}
	for i, f := range fams {
		txt, _ := template.Text(f)
		out = append(out, document.Section("4."+strconv.Itoa(i+1)+" "+txt.Heading, 2, txt.Procedures...))
	}
	return out
}

// results renders "5 RESULTADOS" with one numbered block per family.
func results(p template.Profile, g aggregate.Groups) []document.Block {
	fams := p.Families()
	if len(fams) == 0 {
		return []document.Block{document.Section(ResultsHeading, 1, template.FallbackResult)}
	}
	out := []document.Block{{Heading: ResultsHeading, Level: 1, Bold: true}}
	for i, f := range fams {
		txt, _ := template.Text(f)
		out = append(out, document.Section("5."+strconv.Itoa(i+1)+" "+txt.Heading, 2, txt.Result(g[f])))
	}
	return out
}

// conclusion joins the family clauses with the fixed connective.
func conclusion(p template.Profile, g aggregate.Groups) document.Block {
	fams := p.Families()
	if len(fams) == 0 {
		return document.Section(ConclusionHead, 1, template.ConclusionLead+" "+template.NoProscribedClause)
	}
	var sb strings.Builder
	for i, f := range fams {
		txt, _ := template.Text(f)
		if i == 0 {
			sb.WriteString(template.ConclusionLead + " ")
		} else {
			sb.WriteString(" " + template.ConclusionConnective + " ")
		}
		sb.WriteString(txt.Conclusion(g[f]))
	}
	return document.Section(ConclusionHead, 1, sb.String())
}

func custody(seal string) document.Block {
	seal = strings.TrimSpace(seal)
	return document.Section(CustodyHeading, 1,
		"A contraprova do material examinado encontra-se acondicionada e lacrada sob o lacre nº "+seal+", permanecendo sob a guarda deste Instituto.")
}

// references lists the base entries followed by the bibliography of each
// present family and material, keeping the first occurrence of repeats.
func references(p template.Profile, items []synth.Item, v *vocab.Vocabulary) document.Block {
	entries := v.BaseReferences()
	for _, f := range p.Families() {
		entries = append(entries, v.FamilyReferences(f)...)
		for _, code := range v.MaterialCodes() {
			m, _ := v.Material(code)
			if m.Family != f || !usesMaterial(items, code) {
				continue
			}
			entries = append(entries, v.MaterialReferences(code)...)
		}
	}
	b := document.Block{Heading: RefsHeading, Level: 1, Bold: true}
	for _, e := range aggregate.Dedupe(entries) {
		p := document.Body(e)
		p.Alignment = document.Left
		b.Paragraphs = append(b.Paragraphs, p)
	}
	return b
}

func usesMaterial(items []synth.Item, code string) bool {
	for _, it := range items {
		if vocab.NormalizeCode(it.Material) == code {
			return true
		}
	}
	return false
}

func closing(h Header) (document.Block, bool) {
	if h.City == "" && h.Date == "" && h.Examiner == "" {
		return document.Block{}, false
	}
	b := document.Block{Level: 1}
	if place := strings.Trim(strings.TrimSpace(h.City+", "+h.Date), ", "); place != "" {
		p := document.Body(place + ".")
		p.Alignment = document.Right
		b.Paragraphs = append(b.Paragraphs, p)
	}
	if h.Examiner != "" {
		b.Paragraphs = append(b.Paragraphs,
			document.Centered(h.Examiner, true),
			document.Centered("Perito Criminal", false),
		)
	}
	return b, true
}
