// Package pdftext extracts plain text from report PDFs.
//
// The parser itself never touches PDF bytes; it consumes a single string.
// This package is the adapter in front of it: page texts are joined with a
// space, and anything the PDF library cannot render (an image-only scan)
// comes out empty, which the parser reports as its own explicit failure.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractFile returns the concatenated page text of the PDF at path.
func ExtractFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting page %d of %s: %w", i, path, err)
		}
		b.WriteString(text)
		b.WriteString(" ")
	}
	return b.String(), nil
}
