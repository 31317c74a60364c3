package app

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/hyperifyio/golaudo/internal/document"
	"github.com/hyperifyio/golaudo/internal/validate"
	"github.com/hyperifyio/golaudo/internal/verify"
)

const twoItemRequest = `seal_number: LC-2024-00042
requisition: nº 123/2024
items:
  - quantity: 3
    material: po
    packaging: pl
    color: vm
    reference: "2.2.1"
  - quantity: 1
    material: v
    packaging: pa
    color: b
    reference: "2.1.1"
`

func writeRequest(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "pedido.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func fixedApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }
	a.newID = func() (string, error) { return "TESTID0001", nil }
	return a
}

func TestRun_WritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "laudo.md")
	cfg := DefaultConfig()
	cfg.InputPath = writeRequest(t, dir, twoItemRequest)
	cfg.OutputPath = out
	cfg.EnableHTML = true
	cfg.EnableBlocks = true

	a := fixedApp(t, cfg)
	defer a.Close()
	require.NoError(t, a.Run(context.Background()))

	md, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(md), "2.1 3 (três) porções de material pulverizado, acondicionadas, individualmente, em plásticos de cor vermelha, referentes à amostra do subitem 2.2.1 do laudo de constatação supracitado;")
	assert.Contains(t, string(md), "2.2 1 (uma) porção de material vegetal dessecado, acondicionada em papel de cor branca, referente à amostra do subitem 2.1.1 do laudo de constatação supracitado.")
	assert.Contains(t, string(md), "### 4.2 Pesquisa de cocaína")
	assert.Contains(t, string(md), "Documento TESTID0001")

	pdf, err := os.ReadFile(siblingPath(out, ".pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	page, err := os.ReadFile(siblingPath(out, ".html"))
	require.NoError(t, err)
	doc, err := html.Parse(bytes.NewReader(page))
	require.NoError(t, err)
	assert.Contains(t, collectText(doc), "Outrossim,")

	var blocks []document.Block
	raw, err := os.ReadFile(siblingPath(out, ".blocks.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &blocks))
	_, ok := document.Find(blocks, "5.2")
	assert.True(t, ok)

	var man struct {
		Meta     manifestMeta       `json:"meta"`
		Items    []manifestItem     `json:"items"`
		Findings []validate.Finding `json:"findings"`
	}
	raw, err = os.ReadFile(manifestSidecarPath(out))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &man))
	assert.Equal(t, "TESTID0001", man.Meta.DocumentID)
	assert.Equal(t, "LC-2024-00042", man.Meta.SealNumber)
	assert.Equal(t, "both", man.Meta.Profile)
	assert.Equal(t, 2, man.Meta.ItemCount)
	assert.Len(t, man.Items, 2)
	assert.Empty(t, man.Findings)

	_, err = os.Stat(reviewSidecarPath(out))
	assert.True(t, os.IsNotExist(err), "review sidecar written without review enabled")
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func TestRun_ValidationStopsGeneration(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.InputPath = writeRequest(t, dir, "items:\n  - quantity: 1\n    material: v\n    packaging: e\n")
	cfg.OutputPath = filepath.Join(dir, "laudo.md")

	err := fixedApp(t, cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MalformedItems(t *testing.T) {
	body := "seal_number: S1\nitems:\n  - quantity: 1\n    material: xx\n    packaging: e\n    reference: \"1\"\n"

	t.Run("lenient writes with placeholder", func(t *testing.T) {
		dir := t.TempDir()
		cfg := DefaultConfig()
		cfg.InputPath = writeRequest(t, dir, body)
		cfg.OutputPath = filepath.Join(dir, "laudo.md")
		cfg.EnablePDF = false
		require.NoError(t, fixedApp(t, cfg).Run(context.Background()))

		md, err := os.ReadFile(cfg.OutputPath)
		require.NoError(t, err)
		assert.Contains(t, string(md), `\[UNKNOWN MATERIAL CODE: xx\]`)
		assert.Contains(t, string(md), "### 4.1 Exames realizados")

		raw, err := os.ReadFile(manifestSidecarPath(cfg.OutputPath))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"malformed": [`)
		assert.Contains(t, string(raw), `"kind": "placeholder"`)
	})

	t.Run("strict refuses", func(t *testing.T) {
		dir := t.TempDir()
		cfg := DefaultConfig()
		cfg.InputPath = writeRequest(t, dir, body)
		cfg.OutputPath = filepath.Join(dir, "laudo.md")
		cfg.Strict = true
		err := fixedApp(t, cfg).Run(context.Background())
		assert.True(t, errors.Is(err, ErrMalformedItems), "got %v", err)
		_, statErr := os.Stat(cfg.OutputPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func stubReviewModel(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: reply}}},
		})
	}))
}

func TestRun_ReviewSidecarAndBundle(t *testing.T) {
	srv := stubReviewModel(t, `{"issues":[{"label":"2.1","message":"concordância"}]}`)
	defer srv.Close()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.InputPath = writeRequest(t, dir, twoItemRequest)
	cfg.OutputPath = filepath.Join(dir, "laudo.md")
	cfg.Review = true
	cfg.LLMBaseURL = srv.URL + "/v1"
	cfg.LLMModel = "test-model"
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.ReportsDir = filepath.Join(dir, "reports")
	cfg.ReportsTar = true

	require.NoError(t, fixedApp(t, cfg).Run(context.Background()))

	var rv verify.Result
	raw, err := os.ReadFile(reviewSidecarPath(cfg.OutputPath))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &rv))
	assert.Equal(t, "test-model", rv.Model)
	require.Len(t, rv.Issues, 1)
	assert.Equal(t, verify.SourceModel, rv.Issues[0].Source)

	bundle := filepath.Join(cfg.ReportsDir, "lc-2024-00042")
	sums, err := os.ReadFile(filepath.Join(bundle, "SHA256SUMS"))
	require.NoError(t, err)
	for _, name := range []string{"laudo.md", "laudo.pdf", "manifest.json", "review.json", "request.yaml"} {
		assert.Contains(t, string(sums), "  "+name+"\n")
	}

	names := tarNames(t, filepath.Join(cfg.ReportsDir, "lc-2024-00042.tar.gz"))
	assert.Contains(t, names, "lc-2024-00042/SHA256SUMS")
	assert.Contains(t, names, "lc-2024-00042/laudo.md")
}

func tarNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRun_ImagesEmbeddedAndStagingRemoved(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "foto.png"))
	body := twoItemRequest + "images:\n  - path: foto.png\n    caption: material recebido\n  - path: ausente.png\n"
	cfg := DefaultConfig()
	cfg.InputPath = writeRequest(t, dir, body)
	cfg.OutputPath = filepath.Join(dir, "laudo.md")
	cfg.EnableHTML = true

	require.NoError(t, fixedApp(t, cfg).Run(context.Background()))

	md, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "![Figura 1 - material recebido](<"+filepath.Join(dir, "foto.png")+">)")
	assert.Contains(t, string(md), "Figura 2\n")
	assert.NotContains(t, string(md), "ausente.png")

	page, err := os.ReadFile(siblingPath(cfg.OutputPath, ".html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<img src="`+filepath.Join(dir, "foto.png")+`"`)

	leftovers, _ := filepath.Glob(filepath.Join(os.TempDir(), "golaudo-img-*"))
	for _, l := range leftovers {
		_, err := os.Stat(filepath.Join(l, "figura-01.png"))
		assert.True(t, os.IsNotExist(err), "staging dir left behind: %s", l)
	}
}

func TestNew_VocabOverride(t *testing.T) {
	dir := t.TempDir()
	vf := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(vf, []byte("materials: {}\n"), 0o644))
	cfg := DefaultConfig()
	cfg.InputPath = "x.yaml"
	cfg.VocabFile = vf
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)

	cfg.VocabFile = filepath.Join(dir, "missing.yaml")
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
