package resume

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/job-scout/internal/apperr"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		upload  Upload
		maxSize int64
		wantErr bool
	}{
		{name: "plain text", upload: Upload{Name: "cv.txt", ContentType: "text/plain", Data: []byte("go")}},
		{name: "text with charset", upload: Upload{Name: "cv.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("go")}},
		{name: "pdf", upload: Upload{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
		{name: "docx rejected", upload: Upload{Name: "cv.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, wantErr: true},
		{name: "image rejected", upload: Upload{Name: "cv.png", ContentType: "image/png"}, wantErr: true},
		{name: "at limit", upload: Upload{Name: "cv.txt", ContentType: "text/plain", Data: make([]byte, 1<<20)}},
		{name: "over default limit", upload: Upload{Name: "cv.txt", ContentType: "text/plain", Data: make([]byte, 2<<20)}, wantErr: true},
		{name: "custom limit", upload: Upload{Name: "cv.txt", ContentType: "text/plain", Data: make([]byte, 11)}, maxSize: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.upload, tt.maxSize)
			if tt.wantErr {
				if !apperr.Is(err, apperr.Validation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		file string
		data string
		want string
	}{
		{file: "cv.txt", data: "Go engineer", want: MimeText},
		{file: "cv.PDF", data: "%PDF-1.4", want: MimePDF},
		{file: "cv", data: "Go engineer", want: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		path := filepath.Join(dir, tt.file)
		if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		u, err := FromFile(path)
		if err != nil {
			t.Fatalf("FromFile(%s): %v", tt.file, err)
		}
		if u.ContentType != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.file, tt.want, u.ContentType)
		}
		if u.Name != tt.file || string(u.Data) != tt.data {
			t.Fatalf("%s: unexpected upload %+v", tt.file, u)
		}
	}

	if _, err := FromFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProfileQuery(t *testing.T) {
	t.Parallel()

	p := &Profile{Keywords: []string{"golang", "kubernetes", "grpc"}}
	if got := p.Query(); got != "golang kubernetes grpc" {
		t.Fatalf("unexpected query %q", got)
	}

	var empty *Profile
	if empty.Query() != "" {
		t.Fatal("nil profile should produce an empty query")
	}
}

func TestDocumentExtractor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ex := DocumentExtractor{}

	text, err := ex.Extract(ctx, Upload{
		Name:        "cv.txt",
		ContentType: MimeText,
		Data:        []byte("\xef\xbb\xbfSenior  Go\t engineer\n\n\nKubernetes operator  "),
	})
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if text != "Senior Go engineer\nKubernetes operator" {
		t.Fatalf("unexpected normalized text %q", text)
	}

	failures := []Upload{
		{Name: "bad.txt", ContentType: MimeText, Data: []byte{0xff, 0xfe, 0xfd}},
		{Name: "blank.txt", ContentType: MimeText, Data: []byte(" \n\t ")},
		{Name: "broken.pdf", ContentType: MimePDF, Data: []byte("definitely not a pdf")},
		{Name: "cv.png", ContentType: "image/png", Data: []byte("png")},
	}

	for _, u := range failures {
		_, err := ex.Extract(ctx, u)
		if !apperr.Is(err, apperr.Extraction) {
			t.Fatalf("%s: expected extraction error, got %v", u.Name, err)
		}
		if !strings.Contains(err.Error(), u.Name) {
			t.Fatalf("%s: error should name the file: %v", u.Name, err)
		}
	}
}
