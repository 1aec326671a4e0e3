// Package resume turns an uploaded résumé into a profile: extracted text,
// ranked keywords and an embedding.
package resume

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"

	// DefaultMaxSize is the upload ceiling used when none is configured.
	DefaultMaxSize int64 = 1 << 20
)

// Upload is a résumé file as received from the user.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the upload size in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// MediaType returns the content type without parameters, lowercased.
func (u Upload) MediaType() string {
	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(u.ContentType))
	}
	return mediaType
}

// FromFile reads path and guesses its content type from the extension,
// falling back to content sniffing.
func FromFile(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("read resume %s: %w", path, err)
	}

	return Upload{
		Name:        filepath.Base(path),
		ContentType: detectContentType(path, data),
		Data:        data,
	}, nil
}

func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MimePDF
	case ".txt", ".text":
		return MimeText
	}

	return http.DetectContentType(data)
}

// Validate rejects uploads that are neither plain text nor PDF, or larger
// than maxSize. A non-positive maxSize means DefaultMaxSize.
func Validate(u Upload, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	switch u.MediaType() {
	case MimeText, MimePDF:
	default:
		return apperr.Newf(apperr.Validation, "unsupported file type %q: upload a PDF or a plain text file", u.ContentType)
	}

	if u.Size() > maxSize {
		return apperr.Newf(apperr.Validation, "file %s is %d bytes, the limit is %d bytes", u.Name, u.Size(), maxSize)
	}

	return nil
}

// Profile is the result of analyzing a résumé. It is replaced as a whole on
// every new upload and never mutated. Embedding is nil when no vector is
// available.
type Profile struct {
	RawText   string    `json:"-"`
	Keywords  []string  `json:"keywords"`
	Embedding ai.Vector `json:"-"`
}

// Query is the search query derived from the profile.
func (p *Profile) Query() string {
	if p == nil {
		return ""
	}
	return strings.Join(p.Keywords, " ")
}
