package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SupportedExtensions lists the file types the pipeline accepts, in the order
// they are reported to clients.
var SupportedExtensions = []string{".pdf", ".docx", ".doc"}

// ErrUnsupportedType is returned for files outside SupportedExtensions.
var ErrUnsupportedType = errors.New("unsupported file type")

// Supported reports whether a filename carries an accepted extension.
func Supported(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// FromFile extracts plain text from a document on disk, dispatching on the
// file extension. The returned text is cleaned of control characters and
// collapsed whitespace.
func FromFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return FromBytes(ctx, data, filepath.Base(path))
}

// FromBytes extracts plain text from an in-memory document payload.
func FromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx", ".doc":
		// Legacy .doc files produced by modern tooling are usually OOXML
		// containers; the zip reader rejects true binary .doc payloads.
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileName, err)
	}
	return CleanText(text), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// CleanText drops control characters and collapses runs of spaces and tabs,
// keeping newlines so paragraph structure survives for the prompts.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '\t' || r == '\r':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case r < 0x20 || r == 0x7f || r == 0xfffd:
			// control or replacement characters from mangled encodings
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
