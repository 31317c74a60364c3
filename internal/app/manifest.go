package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hyperifyio/golaudo/internal/synth"
	"github.com/hyperifyio/golaudo/internal/validate"
)

// manifestItem records one described item and the digest of its sentence.
type manifestItem struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	SHA256 string `json:"sha256"`
	Chars  int    `json:"chars"`
}

// manifestMeta captures run details needed to audit a generated report.
type manifestMeta struct {
	DocumentID  string    `json:"document_id"`
	SealNumber  string    `json:"seal_number"`
	Profile     string    `json:"profile"`
	ItemCount   int       `json:"item_count"`
	Malformed   []string  `json:"malformed,omitempty"`
	Vocabulary  string    `json:"vocabulary"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
}

// newDocumentID returns a short random identifier printed in the footer.
func newDocumentID() (string, error) {
	return gonanoid.New(10)
}

func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func buildManifestItems(batch synth.BatchResult) []manifestItem {
	out := make([]manifestItem, 0, len(batch.Items))
	for _, r := range batch.Items {
		out = append(out, manifestItem{
			Label:  r.Label,
			Status: r.Status.String(),
			Code:   r.Code,
			SHA256: computeSHA256Hex(r.Sentence),
			Chars:  len([]rune(r.Sentence)),
		})
	}
	return out
}

// marshalManifestJSON encodes the machine-readable sidecar.
func marshalManifestJSON(meta manifestMeta, items []manifestItem, findings []validate.Finding) ([]byte, error) {
	payload := struct {
		Meta     manifestMeta       `json:"meta"`
		Items    []manifestItem     `json:"items"`
		Findings []validate.Finding `json:"findings"`
	}{Meta: meta, Items: items, Findings: findings}
	if payload.Findings == nil {
		payload.Findings = []validate.Finding{}
	}
	return json.MarshalIndent(payload, "", "  ")
}
