package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidshare/pkg/apperr"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
	failOn  string
	deletes []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, meta: map[string]map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string, meta map[string]string) (string, error) {
	if s.failOn != "" && strings.HasPrefix(key, s.failOn) {
		return "", errors.New("store unavailable")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.meta[key] = meta
	return "https://media.example.com/" + key, nil
}

func (s *memStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, prefix)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.objects, k)
		}
	}
	return nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeTranscoder struct {
	duration  float64
	probeErr  error
	renderErr error
	// noOutput mimics ffmpeg exiting cleanly without writing a frame.
	noOutput bool
	probed   []string
	rendered []Transform
}

func (f *fakeTranscoder) Probe(_ context.Context, path string) (float64, error) {
	f.probed = append(f.probed, path)
	return f.duration, f.probeErr
}

func (f *fakeTranscoder) Render(_ context.Context, _, dst string, t Transform) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.rendered = append(f.rendered, t)
	if f.noOutput {
		return nil
	}
	return os.WriteFile(dst, []byte("jpeg"), 0o600)
}

func newTestClient(store ObjectStore, tr Transcoder, t *testing.T) *Client {
	c := NewClient(store, tr, t.TempDir())
	c.newID = func() string { return "abc123" }
	return c
}

func videoUpload() *Upload {
	return &Upload{
		Reader:      bytes.NewReader([]byte("fake mp4 bytes")),
		Size:        14,
		ContentType: "video/mp4",
		Filename:    "clip.mp4",
	}
}

func TestPolicyCheck(t *testing.T) {
	assert.NoError(t, VideoPolicy.Check("video/mp4", 10))
	assert.NoError(t, VideoPolicy.Check("Video/QuickTime", 10))
	assert.NoError(t, VideoPolicy.Check("video/webm; codecs=vp9", 10))
	assert.NoError(t, ImagePolicy.Check("image/jpg", MaxImageBytes))

	err := VideoPolicy.Check("video/x-msvideo", 10)
	assert.True(t, apperr.Is(err, apperr.KindUnsupportedMediaType))

	err = VideoPolicy.Check("video/mp4", MaxVideoBytes+1)
	assert.True(t, apperr.Is(err, apperr.KindPayloadTooLarge))
	assert.Equal(t, "File size should not exceed 100MB", apperr.PublicMessage(err))

	err = ImagePolicy.Check("image/png", MaxImageBytes+1)
	assert.True(t, apperr.Is(err, apperr.KindPayloadTooLarge))

	err = ImagePolicy.Check("image/gif", 1)
	assert.True(t, apperr.Is(err, apperr.KindUnsupportedMediaType))

	err = ImagePolicy.Check("image/png", 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mp4", Extension("video/mp4"))
	assert.Equal(t, ".mov", Extension("video/quicktime"))
	assert.Equal(t, ".webm", Extension("video/webm"))
	assert.Equal(t, ".jpg", Extension("image/jpeg"))
	assert.Equal(t, ".jpg", Extension("image/jpg"))
	assert.Equal(t, ".png", Extension("image/png"))
}

func TestPublicIDFromURL(t *testing.T) {
	assert.Equal(t, "abc123", PublicIDFromURL("https://cdn.example.com/videos/abc123.mp4"))
	assert.Equal(t, "abc123_0", PublicIDFromURL("https://cdn.example.com/image/abc123_0.jpg"))
	assert.Equal(t, "", PublicIDFromURL(""))

	// Known fragility: shapes the store never produces do not round-trip.
	assert.Equal(t, "abc", PublicIDFromURL("https://cdn.example.com/videos/abc.v2.mp4"))
	assert.Equal(t, "abc123", PublicIDFromURL("https://cdn.example.com/videos/abc123.mp4?sig=1"))
	assert.Equal(t, "abc123?sig=1", PublicIDFromURL("https://cdn.example.com/videos/abc123?sig=1"))
	assert.Equal(t, "", PublicIDFromURL("https://cdn.example.com/videos/"))
}

func TestUploadVideoWithEagerThumbnail(t *testing.T) {
	store := newMemStore()
	tr := &fakeTranscoder{duration: 12.5}
	c := newTestClient(store, tr, t)

	res, err := c.Upload(context.Background(), videoUpload(), UploadParams{
		ResourceType: ResourceVideo,
		Folder:       "videos",
		Eager:        []Transform{ThumbnailTransform},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.PublicID)
	assert.Equal(t, "https://media.example.com/video/abc123.mp4", res.SecureURL)
	assert.Equal(t, "https://media.example.com/image/abc123_0.jpg", res.ThumbnailURL())
	assert.Equal(t, 12.5, res.Duration)
	assert.Equal(t, []string{"image/abc123_0.jpg", "video/abc123.mp4"}, store.keys())
	assert.Equal(t, "videos", store.meta["video/abc123.mp4"]["folder"])
	require.Len(t, tr.rendered, 1)
	assert.Equal(t, 300, tr.rendered[0].Width)
	assert.Equal(t, 3*time.Second, tr.rendered[0].StartOffset)

	assert.Equal(t, "abc123", PublicIDFromURL(res.SecureURL))
	assert.Equal(t, "abc123_0", PublicIDFromURL(res.ThumbnailURL()))
}

func TestUploadWithoutThumbnailStoresOriginal(t *testing.T) {
	cases := map[string]*fakeTranscoder{
		"render error": {duration: 2, renderErr: errors.New("no frame at 3s")},
		"no output":    {duration: 2, noOutput: true},
	}
	for name, tr := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			c := newTestClient(store, tr, t)

			res, err := c.Upload(context.Background(), videoUpload(), UploadParams{
				ResourceType: ResourceVideo,
				Folder:       "videos",
				Eager:        []Transform{ThumbnailTransform},
			})
			require.NoError(t, err)
			assert.Equal(t, "https://media.example.com/video/abc123.mp4", res.SecureURL)
			assert.Empty(t, res.Eager)
			assert.Empty(t, res.ThumbnailURL())
			assert.Equal(t, 2.0, res.Duration)
			assert.Equal(t, []string{"video/abc123.mp4"}, store.keys())
		})
	}
}

func TestUploadUsesSpilledFileInPlace(t *testing.T) {
	store := newMemStore()
	tr := &fakeTranscoder{duration: 1}
	c := newTestClient(store, tr, t)

	spilled, err := os.CreateTemp(t.TempDir(), "multipart-")
	require.NoError(t, err)
	_, err = spilled.WriteString("fake mp4 bytes")
	require.NoError(t, err)
	_, err = spilled.Seek(0, io.SeekStart)
	require.NoError(t, err)
	defer spilled.Close()

	_, err = c.Upload(context.Background(), &Upload{
		Reader:      spilled,
		Size:        14,
		ContentType: "video/mp4",
	}, UploadParams{ResourceType: ResourceVideo, Folder: "videos", Eager: []Transform{ThumbnailTransform}})
	require.NoError(t, err)

	assert.Equal(t, []string{spilled.Name()}, tr.probed)
	assert.Equal(t, []byte("fake mp4 bytes"), store.objects["video/abc123.mp4"])
	_, err = os.Stat(spilled.Name())
	assert.NoError(t, err)
}

func TestUploadEagerStoreFailureRollsBackOriginal(t *testing.T) {
	store := newMemStore()
	store.failOn = "image/"
	c := newTestClient(store, &fakeTranscoder{duration: 1}, t)

	_, err := c.Upload(context.Background(), videoUpload(), UploadParams{
		ResourceType: ResourceVideo,
		Folder:       "videos",
		Eager:        []Transform{ThumbnailTransform},
	})
	require.Error(t, err)
	assert.Empty(t, store.keys())
	assert.Equal(t, []string{"video/abc123."}, store.deletes)
}

func TestUploadImageStreamsDirectly(t *testing.T) {
	store := newMemStore()
	tr := &fakeTranscoder{}
	c := newTestClient(store, tr, t)

	res, err := c.Upload(context.Background(), &Upload{
		Reader:      strings.NewReader("png"),
		Size:        3,
		ContentType: "image/png",
	}, UploadParams{ResourceType: ResourceImage, Folder: "channel_avatar"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/image/abc123.png", res.SecureURL)
	assert.Empty(t, res.ThumbnailURL())
	assert.Empty(t, tr.rendered)
}

func TestDestroy(t *testing.T) {
	store := newMemStore()
	c := newTestClient(store, &fakeTranscoder{duration: 1}, t)
	_, err := c.Upload(context.Background(), videoUpload(), UploadParams{
		ResourceType: ResourceVideo,
		Eager:        []Transform{ThumbnailTransform},
	})
	require.NoError(t, err)

	require.NoError(t, c.Destroy(context.Background(), "abc123", ResourceVideo))
	assert.Equal(t, []string{"image/abc123_0.jpg"}, store.keys())

	require.NoError(t, c.Destroy(context.Background(), "abc123_0", ResourceImage))
	assert.Empty(t, store.keys())

	// missing objects are fine
	require.NoError(t, c.Destroy(context.Background(), "abc123", ResourceVideo))
	assert.Error(t, c.Destroy(context.Background(), "", ResourceVideo))
}

func TestRenderArgs(t *testing.T) {
	args := renderArgs("in.mp4", "out.jpg", ThumbnailTransform)
	assert.Equal(t, []string{
		"-y", "-ss", "3", "-i", "in.mp4", "-frames:v", "1",
		"-vf", "scale=300:200:force_original_aspect_ratio=increase,crop=300:200",
		"out.jpg",
	}, args)

	assert.Equal(t, "scale=64:64", Transform{Width: 64, Height: 64}.filter())
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("12.480000\n")
	require.NoError(t, err)
	assert.Equal(t, 12.48, d)

	d, err = parseDuration("N/A")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = parseDuration("abc")
	assert.Error(t, err)
}
