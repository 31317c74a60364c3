// Package brief reads a report request: the seal number, optional header
// fields and the ordered list of seized items.
package brief

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperifyio/golaudo/internal/sections"
	"github.com/hyperifyio/golaudo/internal/synth"
)

// Request is a parsed report request. Items keep submission order.
type Request struct {
	SealNumber        string
	Requisition       string
	ConstatacaoReport string
	Authority         string
	Examiner          string
	City              string
	Date              string
	Items             []ItemInput
	Images            []Image
}

// ItemInput is one item as submitted. Quantity keeps the raw text so a
// non-numeric value can be reported by validation instead of failing the
// whole parse.
type ItemInput struct {
	Quantity    int
	QuantityRaw string
	Material    string
	Packaging   string
	Color       string
	Reference   string
	Person      string
}

// Image is an illustration attached to the report.
type Image struct {
	Path    string `yaml:"path" json:"path"`
	Caption string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

// requestFile is the on-disk shape. Portuguese keys from the intake form
// are accepted next to the English ones.
type requestFile struct {
	Seal              string     `yaml:"seal_number"`
	Lacre             string     `yaml:"lacre"`
	Requisition       string     `yaml:"requisition"`
	Requisicao        string     `yaml:"requisicao"`
	ConstatacaoReport string     `yaml:"constatacao_report"`
	Constatacao       string     `yaml:"laudo_constatacao"`
	Authority         string     `yaml:"authority"`
	Autoridade        string     `yaml:"autoridade"`
	Examiner          string     `yaml:"examiner"`
	Perito            string     `yaml:"perito"`
	City              string     `yaml:"city"`
	Cidade            string     `yaml:"cidade"`
	Date              string     `yaml:"date"`
	Data              string     `yaml:"data"`
	Items             []itemFile `yaml:"items"`
	Itens             []itemFile `yaml:"itens"`
	Images            []Image    `yaml:"images"`
	Imagens           []Image    `yaml:"imagens"`
}

type itemFile struct {
	Quantity   yaml.Node `yaml:"quantity"`
	Quantidade yaml.Node `yaml:"quantidade"`
	Material   string    `yaml:"material"`
	TipoMat    string    `yaml:"tipo_material"`
	Packaging  string    `yaml:"packaging"`
	TipoEmb    string    `yaml:"tipo_embalagem_base"`
	Color      string    `yaml:"color"`
	Cor        string    `yaml:"cor"`
	Reference  string    `yaml:"reference"`
	Subitem    string    `yaml:"subitem"`
	Person     string    `yaml:"person"`
	Pessoa     string    `yaml:"pessoa"`
}

// ParseRequest decodes a YAML or JSON request. JSON documents are valid
// YAML, so one decoder serves both.
func ParseRequest(data []byte) (Request, error) {
	var f requestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Request{}, fmt.Errorf("parse request: %w", err)
	}
	req := Request{
		SealNumber:        first(f.Seal, f.Lacre),
		Requisition:       first(f.Requisition, f.Requisicao),
		ConstatacaoReport: first(f.ConstatacaoReport, f.Constatacao),
		Authority:         first(f.Authority, f.Autoridade),
		Examiner:          first(f.Examiner, f.Perito),
		City:              first(f.City, f.Cidade),
		Date:              first(f.Date, f.Data),
		Images:            append(f.Images, f.Imagens...),
	}
	for _, it := range append(f.Items, f.Itens...) {
		q := it.Quantity
		if q.Kind == 0 {
			q = it.Quantidade
		}
		raw := strings.TrimSpace(q.Value)
		n, _ := strconv.Atoi(raw)
		req.Items = append(req.Items, ItemInput{
			Quantity:    n,
			QuantityRaw: raw,
			Material:    first(it.Material, it.TipoMat),
			Packaging:   first(it.Packaging, it.TipoEmb),
			Color:       first(it.Color, it.Cor),
			Reference:   first(it.Reference, it.Subitem),
			Person:      first(it.Person, it.Pessoa),
		})
	}
	return req, nil
}

// LoadRequest reads and parses a request file.
func LoadRequest(path string) (Request, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(b)
}

// SynthItems converts the inputs to synthesizer items. IsLast is derived
// from position, so only the final item carries it.
func (r Request) SynthItems() []synth.Item {
	out := make([]synth.Item, 0, len(r.Items))
	for _, in := range r.Items {
		out = append(out, synth.Item{
			Quantity:  in.Quantity,
			Material:  in.Material,
			Packaging: in.Packaging,
			Color:     in.Color,
			Reference: in.Reference,
			Person:    in.Person,
		})
	}
	return synth.MarkLast(out)
}

// Header returns the fields shown in the history and closing sections.
func (r Request) Header() sections.Header {
	return sections.Header{
		Requisition:       r.Requisition,
		ConstatacaoReport: r.ConstatacaoReport,
		Authority:         r.Authority,
		Examiner:          r.Examiner,
		City:              r.City,
		Date:              r.Date,
	}
}

// Captions lists image captions in order.
func (r Request) Captions() []string {
	out := make([]string, 0, len(r.Images))
	for _, im := range r.Images {
		out = append(out, im.Caption)
	}
	return out
}

func first(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
