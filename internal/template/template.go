package template

import (
	"strings"

	"github.com/hyperifyio/golaudo/internal/aggregate"
	"github.com/hyperifyio/golaudo/internal/synth"
	"github.com/hyperifyio/golaudo/internal/vocab"
)

// Profile is the substance mix found in a batch. It is computed once and
// passed to every section renderer.
type Profile int

const (
	// Neither means no item has a recognized material.
	Neither Profile = iota
	CannabisOnly
	CocaineOnly
	Both
)

func (p Profile) String() string {
	switch p {
	case CannabisOnly:
		return "cannabis-only"
	case CocaineOnly:
		return "cocaine-only"
	case Both:
		return "both"
	default:
		return "neither"
	}
}

// HasCannabis reports whether the cannabis family is present.
func (p Profile) HasCannabis() bool { return p == CannabisOnly || p == Both }

// HasCocaine reports whether the cocaine family is present.
func (p Profile) HasCocaine() bool { return p == CocaineOnly || p == Both }

// Families lists the present families, cannabis first.
func (p Profile) Families() []vocab.Family {
	var out []vocab.Family
	if p.HasCannabis() {
		out = append(out, vocab.Cannabis)
	}
	if p.HasCocaine() {
		out = append(out, vocab.Cocaine)
	}
	return out
}

// Classify builds a profile from the families present, in any order.
func Classify(families ...vocab.Family) Profile {
	var cannabis, cocaine bool
	for _, f := range families {
		switch f {
		case vocab.Cannabis:
			cannabis = true
		case vocab.Cocaine:
			cocaine = true
		}
	}
	switch {
	case cannabis && cocaine:
		return Both
	case cannabis:
		return CannabisOnly
	case cocaine:
		return CocaineOnly
	default:
		return Neither
	}
}

// ClassifyItems classifies a batch by its material codes.
func ClassifyItems(items []synth.Item, f aggregate.FamilyOf) Profile {
	fams := make([]vocab.Family, 0, len(items))
	for _, it := range items {
		if fam, ok := f.Family(it.Material); ok {
			fams = append(fams, fam)
		}
	}
	return Classify(fams...)
}

// clause is a sentence whose verb agrees with the number of samples.
type clause struct {
	singular string
	plural   string
	rest     string
}

// FamilyText holds the fixed analytical texts for one family.
type FamilyText struct {
	Family  vocab.Family
	Heading string
	// Procedures is the fixed ordered pair of test descriptions.
	Procedures []string
	result     clause
	conclusion clause
}

const ordinance = "da Portaria SVS/MS nº 344, de 12 de maio de 1998, e suas atualizações"

var familyTexts = map[vocab.Family]FamilyText{
	vocab.Cannabis: {
		Family:  vocab.Cannabis,
		Heading: "Pesquisa de Cannabis sativa L. (maconha)",
		Procedures: []string{
			"Exame macroscópico e microscópico: o material foi examinado a olho nu e com auxílio de estereomicroscópio, para verificação de características morfológicas do vegetal Cannabis sativa L., tais como a presença de tricomas tectores e glandulares.",
			"Ensaio químico colorimétrico com o reagente Fast Blue B Salt (sal azul sólido B) e cromatografia em camada delgada (CCD), empregando padrão de referência de delta-9-tetra-hidrocanabinol (THC).",
		},
		result: clause{
			singular: "apresentou",
			plural:   "apresentaram",
			rest:     "características morfológicas compatíveis com o vegetal Cannabis sativa L. e resultado positivo para a presença de tetra-hidrocanabinol (THC).",
		},
		conclusion: clause{
			singular: "contém",
			plural:   "contêm",
			rest:     "material proveniente do vegetal Cannabis sativa L., conhecido popularmente como maconha, que contém tetra-hidrocanabinol (THC), substância psicotrópica de uso proscrito no Brasil, constante da Lista F2, estando o vegetal relacionado na Lista E " + ordinance + ".",
		},
	},
	vocab.Cocaine: {
		Family:  vocab.Cocaine,
		Heading: "Pesquisa de cocaína",
		Procedures: []string{
			"Ensaio químico colorimétrico com o reagente tiocianato de cobalto (teste de Scott), utilizado na triagem de cocaína.",
			"Cromatografia em camada delgada (CCD), empregando padrão de referência de cocaína.",
		},
		result: clause{
			singular: "apresentou",
			plural:   "apresentaram",
			rest:     "resultado positivo para a presença de cocaína nos ensaios realizados.",
		},
		conclusion: clause{
			singular: "contém",
			plural:   "contêm",
			rest:     "cocaína, substância entorpecente de uso proscrito no Brasil, constante da Lista F1 " + ordinance + ".",
		},
	},
}

// Text returns the fixed texts for f.
func Text(f vocab.Family) (FamilyText, bool) {
	t, ok := familyTexts[f]
	return t, ok
}

// subject renders "A amostra referente ao subitem X" or the plural form.
func subject(refs []string) (string, bool) {
	if len(refs) == 1 {
		return "A amostra referente ao " + aggregate.Subitems(refs), false
	}
	return "As amostras referentes aos " + aggregate.Subitems(refs), true
}

func (c clause) render(refs []string) string {
	subj, plural := subject(refs)
	verb := c.singular
	if plural {
		verb = c.plural
	}
	return subj + " do laudo de constatação supracitado " + verb + " " + c.rest
}

// Result renders the result paragraph for the family's references.
func (t FamilyText) Result(refs []string) string {
	return t.result.render(refs)
}

// Conclusion renders the conclusion clause, starting in lower case so it
// can follow a lead-in.
func (t FamilyText) Conclusion(refs []string) string {
	s := t.conclusion.render(refs)
	return strings.ToLower(s[:1]) + s[1:]
}

// Fixed texts used regardless of the profile.
const (
	ConclusionLead       = "Com base nos exames realizados, conclui-se que"
	ConclusionConnective = "Outrossim,"
	NoProscribedClause   = "não foram detectadas substâncias de uso proscrito no Brasil no material examinado."

	FallbackTestsHeading   = "Exames realizados"
	FallbackMacroHeading   = "Exame macroscópico"
	FallbackMacroProcedure = "O material foi submetido a exame macroscópico, com a descrição de suas características físicas, não tendo sido identificado tipo de material que indicasse a realização de ensaios específicos."
	FallbackResult         = "Os exames realizados não evidenciaram a presença de substâncias de uso proscrito no Brasil no material examinado."
)
