package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Power Purchase Agreement</w:t></w:r></w:p>
    <w:p><w:r><w:t>Term: 20 years</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestFromBytesDocx(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)

	text, err := FromBytes(context.Background(), data, "agreement.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Power Purchase Agreement") || !strings.Contains(text, "Term: 20 years") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytesDocUsesDocxPath(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)
	if _, err := FromBytes(context.Background(), data, "agreement.doc"); err != nil {
		t.Fatalf("modern .doc container should extract: %v", err)
	}
}

func TestFromBytesUnsupported(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte("plain text"), "notes.txt")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestFromBytesZipWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = FromBytes(context.Background(), buf.Bytes(), "archive.docx")
	if err == nil || !strings.Contains(err.Error(), "document.xml") {
		t.Fatalf("expected document.xml error, got %v", err)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agreement.docx")
	if err := os.WriteFile(path, buildDocx(t, sampleDocumentXML), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	text, err := FromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Power Purchase Agreement") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.doc"} {
		if !Supported(name) {
			t.Fatalf("%s should be supported", name)
		}
	}
	for _, name := range []string{"a.txt", "b.xlsx", "noext"} {
		if Supported(name) {
			t.Fatalf("%s should not be supported", name)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "Project\x00 Alpha\t\t capacity:\r  150 MW\n\nnext   line"
	got := CleanText(in)
	want := "Project Alpha capacity: 150 MW\n\nnext line"
	if got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}
