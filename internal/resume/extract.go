package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/spigell/job-scout/internal/apperr"
)

var (
	reSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)

	errNoText = errors.New("no text found in document")
)

// Extractor pulls plain text out of an upload.
type Extractor interface {
	Extract(ctx context.Context, u Upload) (string, error)
}

// DocumentExtractor reads plain text and PDF uploads.
type DocumentExtractor struct{}

func (DocumentExtractor) Extract(ctx context.Context, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)

	switch u.MediaType() {
	case MimeText:
		text, err = extractPlain(u.Data)
	case MimePDF:
		text, err = extractPDF(u.Data)
	default:
		err = fmt.Errorf("unsupported content type %q", u.ContentType)
	}
	if err != nil {
		return "", apperr.New(apperr.Extraction, u.Name, err)
	}

	text = normalizeWhitespace(text)
	if text == "" {
		return "", apperr.New(apperr.Extraction, u.Name, errNoText)
	}

	return text, nil
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return string(data), nil
}

// extractPDF recovers from parser panics on malformed documents.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
