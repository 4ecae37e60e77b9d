package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceVideo ResourceType = "video"
	ResourceImage ResourceType = "image"
)

// Transform describes a derived still image.
type Transform struct {
	Width       int
	Height      int
	Crop        string
	StartOffset time.Duration
	Format      string
}

// ThumbnailTransform is the eager asset requested for every video upload.
var ThumbnailTransform = Transform{
	Width:       300,
	Height:      200,
	Crop:        "thumb",
	StartOffset: 3 * time.Second,
	Format:      "jpg",
}

type UploadParams struct {
	ResourceType ResourceType
	Folder       string
	Eager        []Transform
}

type EagerResult struct {
	SecureURL string `json:"secure_url"`
}

type UploadResult struct {
	PublicID  string        `json:"public_id"`
	SecureURL string        `json:"secure_url"`
	Eager     []EagerResult `json:"eager"`
	// Duration is in seconds and only set for videos.
	Duration float64 `json:"duration"`
}

// ThumbnailURL returns the first eager asset, or "" when none was produced.
func (r *UploadResult) ThumbnailURL() string {
	if len(r.Eager) == 0 {
		return ""
	}
	return r.Eager[0].SecureURL
}

// ObjectStore is the blob backend behind the client.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, meta map[string]string) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// Transcoder inspects a local video and renders stills from it.
type Transcoder interface {
	Probe(ctx context.Context, path string) (float64, error)
	Render(ctx context.Context, src, dst string, t Transform) error
}

// Client stores uploads and their eager derivatives as one call.
type Client struct {
	store      ObjectStore
	transcoder Transcoder
	tempDir    string
	newID      func() string
}

func NewClient(store ObjectStore, transcoder Transcoder, tempDir string) *Client {
	return &Client{
		store:      store,
		transcoder: transcoder,
		tempDir:    tempDir,
		newID:      uuid.NewString,
	}
}

// Upload stores the payload under a fresh public id. Derived assets are rendered
// before anything is written. A transform that yields no output, such as a still
// past the end of a short clip, is skipped and the upload succeeds without it.
// When a write fails, the objects already written are destroyed before returning.
func (c *Client) Upload(ctx context.Context, up *Upload, params UploadParams) (*UploadResult, error) {
	if params.ResourceType == "" {
		params.ResourceType = ResourceImage
	}
	publicID := c.newID()
	ext := Extension(up.ContentType)
	meta := map[string]string{"folder": params.Folder}
	if up.Filename != "" {
		meta["original-filename"] = up.Filename
	}

	if params.ResourceType == ResourceImage && len(params.Eager) == 0 {
		key := objectKey(params.ResourceType, publicID, ext)
		url, err := c.store.Put(ctx, key, up.Reader, up.Size, up.ContentType, meta)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
		return &UploadResult{PublicID: publicID, SecureURL: url}, nil
	}

	dir, err := os.MkdirTemp(c.tempDir, "ingest-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src, err := sourcePath(dir, ext, up.Reader)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{PublicID: publicID}
	if params.ResourceType == ResourceVideo {
		if result.Duration, err = c.transcoder.Probe(ctx, src); err != nil {
			return nil, fmt.Errorf("probe video: %w", err)
		}
	}

	derived := make([]string, len(params.Eager))
	for i, t := range params.Eager {
		dst := filepath.Join(dir, fmt.Sprintf("eager_%d.%s", i, t.Format))
		if err := c.transcoder.Render(ctx, src, dst, t); err != nil {
			slog.Warn("skipping eager transform", "public_id", publicID, "index", i, "error", err)
			continue
		}
		if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
			slog.Warn("eager transform produced no output", "public_id", publicID, "index", i)
			continue
		}
		derived[i] = dst
	}

	stored := []string{}
	url, err := c.putFile(ctx, objectKey(params.ResourceType, publicID, ext), src, up.ContentType, meta)
	if err != nil {
		return nil, err
	}
	stored = append(stored, prefixFor(params.ResourceType, publicID))
	result.SecureURL = url

	for i, t := range params.Eager {
		if derived[i] == "" {
			continue
		}
		eagerID := fmt.Sprintf("%s_%d", publicID, i)
		key := objectKey(ResourceImage, eagerID, "."+t.Format)
		url, err := c.putFile(ctx, key, derived[i], "image/"+jpegAlias(t.Format), meta)
		if err != nil {
			c.rollback(ctx, stored)
			return nil, err
		}
		stored = append(stored, prefixFor(ResourceImage, eagerID))
		result.Eager = append(result.Eager, EagerResult{SecureURL: url})
	}

	return result, nil
}

// Destroy removes every object stored under the public id for the resource type.
// Destroying an id that does not exist is not an error.
func (c *Client) Destroy(ctx context.Context, publicID string, kind ResourceType) error {
	if publicID == "" {
		return errors.New("empty public id")
	}
	return c.store.DeletePrefix(ctx, prefixFor(kind, publicID))
}

func (c *Client) putFile(ctx context.Context, key, path, contentType string, meta map[string]string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	url, err := c.store.Put(ctx, key, f, info.Size(), contentType, meta)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return url, nil
}

func (c *Client) rollback(ctx context.Context, prefixes []string) {
	for _, p := range prefixes {
		if err := c.store.DeletePrefix(ctx, p); err != nil {
			slog.Warn("failed to remove partial upload", "prefix", p, "error", err)
		}
	}
}

// sourcePath returns a local file holding the upload. A multipart part that was
// already spilled to disk is used in place.
func sourcePath(dir, ext string, r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok {
		return f.Name(), nil
	}
	path := filepath.Join(dir, "source"+ext)
	if err := spool(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func spool(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("save uploaded file: %w", err)
	}
	return f.Close()
}

func objectKey(kind ResourceType, publicID, ext string) string {
	return fmt.Sprintf("%s/%s%s", kind, publicID, ext)
}

// prefixFor matches the object of a public id whatever its extension.
func prefixFor(kind ResourceType, publicID string) string {
	return fmt.Sprintf("%s/%s.", kind, publicID)
}

func jpegAlias(format string) string {
	if format == "jpg" {
		return "jpeg"
	}
	return format
}
