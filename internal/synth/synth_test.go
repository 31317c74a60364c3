package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_SingleEppendorfScenario(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 1, Material: "v", Packaging: "e", Reference: "2.1.1", IsLast: true})
	require.True(t, res.OK())
	assert.Equal(t,
		`2.1 1 (uma) porção de material vegetal dessecado, acondicionada em microtubo do tipo "eppendorf", referente à amostra do subitem 2.1.1 do laudo de constatação supracitado.`,
		res.Sentence)
	assert.Empty(t, res.Diagnostics)
}

func TestDescribe_PluralWithColor(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 3, Material: "po", Packaging: "pl", Color: "vm", Reference: "2.1.1"})
	require.True(t, res.OK())
	assert.Equal(t,
		"2.1 3 (três) porções de material pulverizado, acondicionadas, individualmente, em plásticos de cor vermelha, referentes à amostra do subitem 2.1.1 do laudo de constatação supracitado;",
		res.Sentence)
}

func TestDescribe_PersonClauseBeforeTerminator(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.2", Item{Quantity: 1, Material: "v", Packaging: "pa", Color: "b", Reference: "2.2.1", Person: "João da Silva", IsLast: true})
	require.True(t, res.OK())
	assert.True(t, strings.HasSuffix(res.Sentence, "papel de cor branca, referente à amostra do subitem 2.2.1 do laudo de constatação supracitado, relacionada a João da Silva."), res.Sentence)
}

func TestDescribe_InvariantPackagingInPlural(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 12, Material: "pd", Packaging: "z", Reference: "1"})
	require.True(t, res.OK())
	assert.Contains(t, res.Sentence, "12 (doze) porções de material petrificado, acondicionadas, individualmente, em embalagem do tipo \"zip\", referentes")
}

func TestDescribe_NumeralFallbackIsDiagnostic(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 25, Material: "v", Packaging: "a", Reference: "3", IsLast: true})
	require.True(t, res.OK())
	assert.Contains(t, res.Sentence, "25 (25) porções")
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "25")
}

func TestDescribe_UnknownMaterialIsFlaggedNotFatal(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 2, Material: "heroina", Packaging: "e", Reference: "2.1.1", IsLast: true})
	assert.Equal(t, StatusMalformed, res.Status)
	assert.Equal(t, "heroina", res.Code)
	assert.Contains(t, res.Sentence, "[UNKNOWN MATERIAL CODE: heroina]")
	assert.True(t, strings.HasSuffix(res.Sentence, "."))
}

func TestDescribe_UnknownPackagingNotPluralized(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 2, Material: "v", Packaging: "caixa", Reference: "2.1.1"})
	assert.Equal(t, StatusMalformed, res.Status)
	assert.Contains(t, res.Sentence, "em [UNKNOWN PACKAGING CODE: caixa], referentes")
}

func TestDescribe_BothCodesUnknown(t *testing.T) {
	s := New(nil)
	res := s.Describe("2.1", Item{Quantity: 1, Material: "x", Packaging: "y", Reference: "2.1.1"})
	assert.Equal(t, "x,y", res.Code)
	assert.Contains(t, res.Reason, "packaging")
}

func TestDescribe_FailureBecomesPlaceholder(t *testing.T) {
	s := &Synthesizer{}
	res := s.Describe("2.4", Item{Quantity: 1, Material: "v", Packaging: "e"})
	assert.Equal(t, StatusMalformed, res.Status)
	assert.Equal(t, "[ERROR IN ITEM DESCRIPTION 2.4]", res.Sentence)

	res = New(nil).Describe("2.5", Item{Quantity: 0, Material: "v", Packaging: "e"})
	assert.Equal(t, "[ERROR IN ITEM DESCRIPTION 2.5]", res.Sentence)
}

func TestDescribeBatch_TerminatorLaw(t *testing.T) {
	items := MarkLast([]Item{
		{Quantity: 1, Material: "v", Packaging: "e", Reference: "2.1.1"},
		{Quantity: 2, Material: "r", Packaging: "a", Reference: "2.1.2"},
		{Quantity: 5, Material: "nope", Packaging: "z", Reference: "2.1.3"},
		{Quantity: 4, Material: "po", Packaging: "pl", Color: "t", Reference: "2.1.4"},
	})
	batch := New(nil).DescribeBatch(items)
	require.Len(t, batch.Items, 4)

	periods := 0
	for i, r := range batch.Items {
		assert.Equal(t, "2."+string(rune('1'+i)), r.Label)
		switch {
		case strings.HasSuffix(r.Sentence, "."):
			periods++
			assert.Equal(t, len(items)-1, i)
		case strings.HasSuffix(r.Sentence, ";"):
		default:
			t.Fatalf("sentence %d has no terminator: %q", i, r.Sentence)
		}
	}
	assert.Equal(t, 1, periods)
	require.Len(t, batch.Malformed(), 1)
	assert.Equal(t, "2.3", batch.Malformed()[0].Label)
	assert.Len(t, batch.Sentences(), 4)
}

func TestDescribe_QuantityGrammar(t *testing.T) {
	s := New(nil)
	one := s.Describe("2.1", Item{Quantity: 1, Material: "r", Packaging: "pa", Reference: "r"})
	assert.Contains(t, one.Sentence, "(uma) porção de")
	assert.Contains(t, one.Sentence, "acondicionada em papel,")
	assert.Contains(t, one.Sentence, " referente à")

	two := s.Describe("2.1", Item{Quantity: 2, Material: "r", Packaging: "pa", Reference: "r"})
	assert.Contains(t, two.Sentence, "(duas) porções de")
	assert.Contains(t, two.Sentence, "acondicionadas, individualmente, em papeis,")
	assert.Contains(t, two.Sentence, " referentes à")
}

func TestMarkLast(t *testing.T) {
	in := []Item{{IsLast: true}, {}, {}}
	out := MarkLast(in)
	assert.False(t, out[0].IsLast)
	assert.False(t, out[1].IsLast)
	assert.True(t, out[2].IsLast)
	assert.True(t, in[0].IsLast, "input slice is not modified")
	assert.Empty(t, MarkLast(nil))
}

func TestStatus_Text(t *testing.T) {
	b, err := StatusMalformed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "malformed", string(b))
	assert.Equal(t, "ok", StatusOK.String())
}
