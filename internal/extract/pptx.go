package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// slidePathPrefix is where slide XML lives inside a .pptx container.
const slidePathPrefix = "ppt/slides/slide"

// atTag matches <a:t>text</a:t> including attributed forms.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX extracts text from .pptx bytes: the OOXML container is a zip of
// slide XML files, and every <a:t> text node is collected per slide.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pptx: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, slidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open slide %s: %w", f.Name, err)
		}
		var slide bytes.Buffer
		_, err = slide.ReadFrom(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read slide %s: %w", f.Name, err)
		}
		for _, p := range atTag.FindAllStringSubmatch(slide.String(), -1) {
			text := strings.TrimSpace(p[1])
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}
