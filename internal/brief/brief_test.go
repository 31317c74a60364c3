package brief

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_YAML(t *testing.T) {
	in := `
seal_number: " LC-2024-00042 "
requisition: nº 123/2024
city: Brasília
items:
  - quantity: 3
    material: po
    packaging: pl
    color: vm
    reference: "2.2.1"
  - quantity: "1"
    material: v
    packaging: pa
    color: b
    reference: "2.1.1"
    person: João da Silva
images:
  - path: foto1.jpg
    caption: Material recebido
`
	req, err := ParseRequest([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "LC-2024-00042", req.SealNumber)
	assert.Equal(t, "nº 123/2024", req.Header().Requisition)
	assert.Equal(t, "Brasília", req.Header().City)
	require.Len(t, req.Items, 2)
	assert.Equal(t, 3, req.Items[0].Quantity)
	assert.Equal(t, 1, req.Items[1].Quantity)
	assert.Equal(t, "João da Silva", req.Items[1].Person)
	assert.Equal(t, []string{"Material recebido"}, req.Captions())

	items := req.SynthItems()
	assert.False(t, items[0].IsLast)
	assert.True(t, items[1].IsLast)
	assert.Equal(t, "vm", items[0].Color)
}

func TestParseRequest_JSONWithPortugueseKeys(t *testing.T) {
	in := `{"lacre": "777", "itens": [{"quantidade": 2, "tipo_material": "v", "tipo_embalagem_base": "z", "subitem": "2.1.1"}]}`
	req, err := ParseRequest([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "777", req.SealNumber)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.Equal(t, "v", req.Items[0].Material)
	assert.Equal(t, "z", req.Items[0].Packaging)
	assert.Equal(t, "2.1.1", req.Items[0].Reference)
	assert.True(t, req.SynthItems()[0].IsLast)
}

func TestParseRequest_NonNumericQuantityKeptRaw(t *testing.T) {
	req, err := ParseRequest([]byte("items:\n  - quantity: três\n    material: v\n"))
	require.NoError(t, err)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 0, req.Items[0].Quantity)
	assert.Equal(t, "três", req.Items[0].QuantityRaw)
}

func TestParseRequest_Invalid(t *testing.T) {
	_, err := ParseRequest([]byte("items: [unclosed"))
	assert.Error(t, err)
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "req.yaml")
	require.NoError(t, os.WriteFile(p, []byte("seal_number: X1\n"), 0o644))
	req, err := LoadRequest(p)
	require.NoError(t, err)
	assert.Equal(t, "X1", req.SealNumber)
	assert.Empty(t, req.SynthItems())

	_, err = LoadRequest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
