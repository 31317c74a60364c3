// Package vocab holds the fixed lookup tables used to describe seized
// material: material and packaging codes, colors, feminine numerals,
// irregular plurals and the bibliography contributed by each substance
// family. Tables are loaded once and never mutated afterwards, so a
// *Vocabulary may be shared freely between goroutines.
package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	yaml "gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var defaultYAML []byte

// Family is the substance family a material code belongs to.
type Family string

const (
	Cannabis Family = "cannabis"
	Cocaine  Family = "cocaine"
)

// Material is a resolved material code.
type Material struct {
	Code   string
	Name   string
	Family Family
}

// Packaging is a resolved packaging code.
type Packaging struct {
	Code string
	Name string
	// Invariant packagings never change between singular and plural.
	Invariant bool
	// Colored packagings accept an optional color clause.
	Colored bool
}

// Vocabulary is the immutable set of tables. The zero value is empty; use
// Default, Load or LoadFile.
type Vocabulary struct {
	materials       map[string]Material
	packagings      map[string]Packaging
	colors          map[string]string
	invariantColors map[string]struct{}
	numerals        map[int]string
	irregular       map[string]string
	bibBase         []string
	bibFamilies     map[Family][]string
	bibMaterials    map[string][]string
}

type fileSchema struct {
	Materials map[string]struct {
		Name   string `yaml:"name"`
		Family string `yaml:"family"`
	} `yaml:"materials"`
	Packagings map[string]struct {
		Name      string `yaml:"name"`
		Invariant bool   `yaml:"invariant"`
		Colored   bool   `yaml:"colored"`
	} `yaml:"packagings"`
	Colors           map[string]string `yaml:"colors"`
	InvariantColors  []string          `yaml:"invariant_colors"`
	Numerals         map[int]string    `yaml:"numerals"`
	IrregularPlurals map[string]string `yaml:"irregular_plurals"`
	Bibliography     struct {
		Base      []string            `yaml:"base"`
		Families  map[string][]string `yaml:"families"`
		Materials map[string][]string `yaml:"materials"`
	} `yaml:"bibliography"`
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
	defaultErr   error
)

// Default returns the embedded vocabulary. It is parsed on first use.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocab, defaultErr = Load(defaultYAML)
	})
	if defaultErr != nil {
		// The embedded file is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("vocab: embedded vocabulary invalid: %v", defaultErr))
	}
	return defaultVocab
}

// LoadFile reads a vocabulary override from a YAML file.
func LoadFile(path string) (*Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Load(b)
}

// Load parses and validates a YAML vocabulary.
func Load(data []byte) (*Vocabulary, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	v := &Vocabulary{
		materials:       make(map[string]Material, len(fs.Materials)),
		packagings:      make(map[string]Packaging, len(fs.Packagings)),
		colors:          make(map[string]string, len(fs.Colors)),
		invariantColors: make(map[string]struct{}, len(fs.InvariantColors)),
		numerals:        make(map[int]string, len(fs.Numerals)),
		irregular:       make(map[string]string, len(fs.IrregularPlurals)),
		bibFamilies:     map[Family][]string{},
		bibMaterials:    map[string][]string{},
	}
	var errs []error
	for code, m := range fs.Materials {
		f := Family(strings.ToLower(strings.TrimSpace(m.Family)))
		if f != Cannabis && f != Cocaine {
			errs = append(errs, fmt.Errorf("material %q: unknown family %q", code, m.Family))
			continue
		}
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("material %q: empty name", code))
			continue
		}
		c := NormalizeCode(code)
		v.materials[c] = Material{Code: c, Name: strings.TrimSpace(m.Name), Family: f}
	}
	for code, p := range fs.Packagings {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("packaging %q: empty name", code))
			continue
		}
		c := NormalizeCode(code)
		v.packagings[c] = Packaging{Code: c, Name: strings.TrimSpace(p.Name), Invariant: p.Invariant, Colored: p.Colored}
	}
	for k, form := range fs.Colors {
		v.colors[NormalizeKey(k)] = strings.TrimSpace(form)
	}
	for _, c := range fs.InvariantColors {
		v.invariantColors[NormalizeKey(c)] = struct{}{}
	}
	for n, w := range fs.Numerals {
		if n < 1 {
			errs = append(errs, fmt.Errorf("numeral %d: must be positive", n))
			continue
		}
		v.numerals[n] = strings.TrimSpace(w)
	}
	for sing, pl := range fs.IrregularPlurals {
		v.irregular[strings.TrimSpace(sing)] = strings.TrimSpace(pl)
	}
	v.bibBase = append(v.bibBase, fs.Bibliography.Base...)
	for f, refs := range fs.Bibliography.Families {
		v.bibFamilies[Family(strings.ToLower(f))] = append([]string(nil), refs...)
	}
	for code, refs := range fs.Bibliography.Materials {
		v.bibMaterials[NormalizeCode(code)] = append([]string(nil), refs...)
	}
	if len(v.materials) == 0 {
		errs = append(errs, errors.New("no materials defined"))
	}
	if len(v.packagings) == 0 {
		errs = append(errs, errors.New("no packagings defined"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	return v, nil
}

// Material looks up a material code.
func (v *Vocabulary) Material(code string) (Material, bool) {
	m, ok := v.materials[NormalizeCode(code)]
	return m, ok
}

// Packaging looks up a packaging code.
func (v *Vocabulary) Packaging(code string) (Packaging, bool) {
	p, ok := v.packagings[NormalizeCode(code)]
	return p, ok
}

// Color looks up a color abbreviation or full word.
func (v *Vocabulary) Color(token string) (string, bool) {
	c, ok := v.colors[NormalizeKey(token)]
	return c, ok
}

// InvariantColor reports whether color keeps its form regardless of gender.
func (v *Vocabulary) InvariantColor(color string) bool {
	_, ok := v.invariantColors[NormalizeKey(color)]
	return ok
}

// Numeral returns the feminine cardinal for n, if the table covers it.
func (v *Vocabulary) Numeral(n int) (string, bool) {
	w, ok := v.numerals[n]
	return w, ok
}

// IrregularPlural returns the listed plural of word.
func (v *Vocabulary) IrregularPlural(word string) (string, bool) {
	p, ok := v.irregular[word]
	return p, ok
}

// InvariantPhrases lists the packaging phrases that never pluralize.
func (v *Vocabulary) InvariantPhrases() []string {
	out := make([]string, 0, 2)
	for _, p := range v.packagings {
		if p.Invariant {
			out = append(out, p.Name)
		}
	}
	sort.Strings(out)
	return out
}

// MaterialCodes returns all material codes, sorted.
func (v *Vocabulary) MaterialCodes() []string {
	out := make([]string, 0, len(v.materials))
	for c := range v.materials {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// PackagingCodes returns all packaging codes, sorted.
func (v *Vocabulary) PackagingCodes() []string {
	out := make([]string, 0, len(v.packagings))
	for c := range v.packagings {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// BaseReferences are cited in every report.
func (v *Vocabulary) BaseReferences() []string { return append([]string(nil), v.bibBase...) }

// FamilyReferences are cited when the family is present.
func (v *Vocabulary) FamilyReferences(f Family) []string {
	return append([]string(nil), v.bibFamilies[f]...)
}

// MaterialReferences are cited when the material code is present.
func (v *Vocabulary) MaterialReferences(code string) []string {
	return append([]string(nil), v.bibMaterials[NormalizeCode(code)]...)
}

// NormalizeCode lower-cases and trims a material or packaging code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// NormalizeKey folds case and strips diacritics so "Vermelho", "vermelho"
// and "VERMELHO" share one key.
func NormalizeKey(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
