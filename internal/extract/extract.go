// Package extract parses supported document formats into raw text.
// Parsers return extracted text, not chunks; normalization and chunking
// happen downstream in the retrieval service.
package extract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned when no parser is registered for an
// extension. It is surfaced to the caller and never retried.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ParseFunc turns raw file bytes into extracted text.
type ParseFunc func(content []byte) (string, error)

// Extractor dispatches to a parser by file extension. The registry is an
// explicit extension-to-parser mapping; legacy extensions share the parser of
// their modern counterpart (xls/xlsx, ppt/pptx) and fail at parse time when
// the bytes are not the OOXML container.
type Extractor struct {
	parsers map[string]ParseFunc
}

// NewExtractor returns an extractor with all built-in parsers registered.
func NewExtractor() *Extractor {
	e := &Extractor{parsers: make(map[string]ParseFunc)}
	e.Register("pdf", extractPDF)
	e.Register("docx", extractDOCX)
	e.Register("xlsx", extractExcel)
	e.Register("xls", extractExcel)
	e.Register("pptx", extractPPTX)
	e.Register("ppt", extractPPTX)
	e.Register("txt", extractPlain)
	return e
}

// Register maps an extension (with or without leading dot, case-insensitive)
// to a parser, replacing any existing registration.
func (e *Extractor) Register(ext string, fn ParseFunc) {
	e.parsers[normalizeExt(ext)] = fn
}

// Extract parses content according to ext. Returns ErrUnsupportedFormat when
// no parser is registered for the extension.
func (e *Extractor) Extract(content []byte, ext string) (string, error) {
	fn, ok := e.parsers[normalizeExt(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return fn(content)
}

// Supported returns the registered extensions, sorted.
func (e *Extractor) Supported() []string {
	exts := make([]string, 0, len(e.parsers))
	for ext := range e.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
