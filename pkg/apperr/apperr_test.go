package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{UnsupportedMediaType("type"), http.StatusBadRequest},
		{PayloadTooLarge("big"), http.StatusRequestEntityTooLarge},
		{NotFound("gone"), http.StatusNotFound},
		{Authorization("nope"), http.StatusForbidden},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{RemoteService(errors.New("cdn down")), http.StatusInternalServerError},
		{Persistence("db", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Persistence("Unable to save the video", errors.New("E11000 duplicate key"))
	assert.Equal(t, "Unable to save the video", PublicMessage(err))
	assert.Contains(t, err.Error(), "E11000")

	assert.Equal(t, "Internal server error", PublicMessage(errors.New("secret")))
}

func TestRemoteServiceSurfacesUpstreamMessage(t *testing.T) {
	err := RemoteService(errors.New("bucket not reachable"))
	assert.Equal(t, "bucket not reachable", PublicMessage(err))
	assert.Equal(t, "Remote media service failed", PublicMessage(RemoteService(nil)))
}

func TestRemoteServiceDropsLocalWrapping(t *testing.T) {
	upstream := errors.New("invalid data found when processing input")
	err := RemoteService(fmt.Errorf("probe video: %w", fmt.Errorf("ffprobe /tmp/ingest-1/source.mp4: %w", upstream)))

	assert.Equal(t, "invalid data found when processing input", PublicMessage(err))
	assert.NotContains(t, PublicMessage(err), "/tmp")
	assert.Contains(t, err.Error(), "/tmp/ingest-1/source.mp4")
	assert.ErrorIs(t, err, upstream)
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Video not found"))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
	assert.Equal(t, http.StatusNotFound, Status(err))
}
