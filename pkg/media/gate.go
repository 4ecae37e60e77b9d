package media

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"vidshare/pkg/apperr"
)

const (
	MiB = 1 << 20

	MaxVideoBytes = 100 * MiB
	MaxImageBytes = 5 * MiB
)

// Policy is the admission rule for one kind of upload.
type Policy struct {
	Kind     ResourceType
	MaxBytes int64
	Allowed  []string
	// Label is used in the rejection message.
	Label string
}

var (
	VideoPolicy = Policy{
		Kind:     ResourceVideo,
		MaxBytes: MaxVideoBytes,
		Allowed:  []string{"video/mp4", "video/quicktime", "video/x-m4v", "video/webm"},
		Label:    "mp4, mov, m4v, webm",
	}
	ImagePolicy = Policy{
		Kind:     ResourceImage,
		MaxBytes: MaxImageBytes,
		Allowed:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		Label:    "jpeg, jpg, png, webp",
	}
)

// Upload is an admitted payload. Reader is only valid for the current request.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Check validates a declared content type and size against the policy.
func (p Policy) Check(contentType string, size int64) error {
	ct := normalizeContentType(contentType)
	if !p.allows(ct) {
		return apperr.UnsupportedMediaType(fmt.Sprintf("Invalid file type. Only %s are allowed.", p.Label))
	}
	if size <= 0 {
		return apperr.Validation("Uploaded file is empty")
	}
	if size > p.MaxBytes {
		return apperr.PayloadTooLarge(fmt.Sprintf("File size should not exceed %dMB", p.MaxBytes/MiB))
	}
	return nil
}

// Open checks a multipart file and opens it. The caller closes the returned closer.
func (p Policy) Open(fh *multipart.FileHeader) (*Upload, io.Closer, error) {
	ct := fh.Header.Get("Content-Type")
	if err := p.Check(ct, fh.Size); err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperr.Validation("Unable to read the uploaded file")
	}
	return &Upload{
		Reader:      f,
		Size:        fh.Size,
		ContentType: normalizeContentType(ct),
		Filename:    fh.Filename,
	}, f, nil
}

func (p Policy) allows(ct string) bool {
	for _, a := range p.Allowed {
		if a == ct {
			return true
		}
	}
	return false
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// Extension returns the file extension stored objects get for a content type.
func Extension(contentType string) string {
	ct := normalizeContentType(contentType)
	if ct == "image/jpg" {
		return ".jpg"
	}
	if m := mimetype.Lookup(ct); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
