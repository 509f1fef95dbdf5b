package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtract_Plain(t *testing.T) {
	e := NewExtractor()
	text, err := e.Extract([]byte("hello world"), "txt")
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world" {
		t.Errorf("got %q", text)
	}
}

func TestExtract_PlainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	text, err := e.Extract([]byte{'h', 'i', 0xff}, "txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "hi") {
		t.Errorf("got %q", text)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("x"), "exe")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_ExtensionNormalization(t *testing.T) {
	e := NewExtractor()
	for _, ext := range []string{"txt", ".txt", "TXT", ".TXT"} {
		if _, err := e.Extract([]byte("x"), ext); err != nil {
			t.Errorf("extension %q should be accepted: %v", ext, err)
		}
	}
}

func TestExtract_PPTX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte(`<p:sld><a:t>Quarterly</a:t><a:t xml:space="preserve">results</a:t></p:sld>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	text, err := e.Extract(buf.Bytes(), "pptx")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Quarterly results" {
		t.Errorf("got %q", text)
	}
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "revenue"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "1000"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	text, err := e.Extract(buf.Bytes(), "xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "revenue") || !strings.Contains(text, "1000") {
		t.Errorf("cell text missing: %q", text)
	}
}

func TestSupported(t *testing.T) {
	e := NewExtractor()
	exts := e.Supported()
	want := map[string]bool{"pdf": true, "docx": true, "xlsx": true, "xls": true, "pptx": true, "ppt": true, "txt": true}
	if len(exts) != len(want) {
		t.Fatalf("expected %d extensions, got %v", len(want), exts)
	}
	for _, ext := range exts {
		if !want[ext] {
			t.Errorf("unexpected extension %q", ext)
		}
	}
}

func TestRegister_Override(t *testing.T) {
	e := NewExtractor()
	e.Register("txt", func([]byte) (string, error) { return "overridden", nil })
	text, err := e.Extract([]byte("ignored"), "txt")
	if err != nil {
		t.Fatal(err)
	}
	if text != "overridden" {
		t.Errorf("got %q", text)
	}
}
