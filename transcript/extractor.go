package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, document []byte) (string, error)
}

// PDFExtractor reads the text layer of unencrypted PDF documents.
type PDFExtractor struct{}

var _ TextExtractor = PDFExtractor{}

// Extract concatenates the plain text of every page.
func (PDFExtractor) Extract(ctx context.Context, document []byte) (text string, err error) {
	if len(document) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExtraction)
	}

	// The parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", fmt.Errorf("%w: the PDF file is encrypted, please provide an unencrypted PDF file", ErrExtraction)
		}
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtraction, i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: no text could be extracted, ensure the PDF contains readable text", ErrExtraction)
	}
	return b.String(), nil
}

// PlainTextExtractor accepts documents that are already UTF-8 text.
type PlainTextExtractor struct{}

var _ TextExtractor = PlainTextExtractor{}

// Extract returns document as a string.
func (PlainTextExtractor) Extract(_ context.Context, document []byte) (string, error) {
	if !utf8.Valid(document) {
		return "", fmt.Errorf("%w: document is not UTF-8 text", ErrExtraction)
	}
	if strings.TrimSpace(string(document)) == "" {
		return "", fmt.Errorf("%w: empty document", ErrExtraction)
	}
	return string(document), nil
}
