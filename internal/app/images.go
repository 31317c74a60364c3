package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/golaudo/internal/brief"
)

// stagedImage is an illustration copied into the staging directory.
// Source is the path as resolved from the request, Staged the private copy
// handed to the PDF writer.
type stagedImage struct {
	Index   int
	Source  string
	Staged  string
	Caption string
}

// imageStage owns a temporary directory. Close removes it.
type imageStage struct {
	dir    string
	images map[int]stagedImage
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// stageImages copies every readable image into a fresh temporary directory.
// Relative paths resolve against baseDir. An unreadable or unsupported image
// is logged and skipped; its caption still appears in the report.
func stageImages(images []brief.Image, baseDir string) (*imageStage, error) {
	st := &imageStage{images: map[int]stagedImage{}}
	if len(images) == 0 {
		return st, nil
	}
	dir, err := os.MkdirTemp("", "golaudo-img-*")
	if err != nil {
		return nil, fmt.Errorf("image staging dir: %w", err)
	}
	st.dir = dir
	for i, im := range images {
		idx := i + 1
		src := im.Path
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		ext := strings.ToLower(filepath.Ext(src))
		if !imageExts[ext] {
			log.Warn().Str("path", src).Int("figure", idx).Msg("unsupported image type; skipping")
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil {
			log.Warn().Err(err).Str("path", src).Int("figure", idx).Msg("image unreadable; skipping")
			continue
		}
		staged := filepath.Join(dir, fmt.Sprintf("figura-%02d%s", idx, ext))
		if err := os.WriteFile(staged, data, 0o600); err != nil {
			st.Close()
			return nil, fmt.Errorf("stage image %d: %w", idx, err)
		}
		st.images[idx] = stagedImage{Index: idx, Source: src, Staged: staged, Caption: im.Caption}
	}
	return st, nil
}

// Get returns the staged image for a 1-based figure number.
func (s *imageStage) Get(figure int) (stagedImage, bool) {
	if s == nil {
		return stagedImage{}, false
	}
	im, ok := s.images[figure]
	return im, ok
}

// Close removes the staging directory.
func (s *imageStage) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	return err
}
