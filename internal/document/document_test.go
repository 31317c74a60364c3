package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignment_JSONNames(t *testing.T) {
	p := Paragraph{Text: "x", Alignment: Justify, SpaceAfter: 6}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"x","alignment":"justify","bold":false,"space_after":6}`, string(b))

	var back Paragraph
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)

	var a Alignment
	assert.Error(t, a.UnmarshalText([]byte("diagonal")))
	assert.Equal(t, "left", Alignment(42).String())
}

func TestSectionAndFind(t *testing.T) {
	blocks := []Block{
		Section("1 HISTÓRICO", 1, "a", "b"),
		Section("4.1 Exames", 2, "c"),
	}
	assert.Len(t, blocks[0].Paragraphs, 2)
	assert.Equal(t, Justify, blocks[0].Paragraphs[0].Alignment)

	got, ok := Find(blocks, "4.1")
	require.True(t, ok)
	assert.Equal(t, "c", got.Paragraphs[0].Text)
	_, ok = Find(blocks, "9")
	assert.False(t, ok)

	assert.Equal(t, "1 HISTÓRICO\na\nb\n4.1 Exames\nc\n", Text(blocks))
}

func TestParagraph_FigureJSON(t *testing.T) {
	b, err := json.Marshal(Body("x"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "figure")

	p := Centered("Figura 2", false)
	p.Figure = 2
	b, err = json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"figure":2`)
	var back Paragraph
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 2, back.Figure)
}
