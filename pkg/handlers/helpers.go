package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/apperr"
	"vidshare/pkg/media"
)

// multipartOverhead covers the form fields sent next to the file.
const multipartOverhead = 1 * media.MiB

func objectIDParam(c *gin.Context, name, invalidMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.Error(apperr.Validation(invalidMsg))
		return primitive.NilObjectID, false
	}
	return id, true
}

func objectIDQuery(c *gin.Context, name, invalidMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Query(name))
	if err != nil {
		c.Error(apperr.Validation(invalidMsg))
		return primitive.NilObjectID, false
	}
	return id, true
}

// limitBody caps the request body so an oversized upload fails while it is read.
func limitBody(c *gin.Context, max int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+multipartOverhead)
}

// parseMultipart reads the form and maps a body over the limit to 413.
func parseMultipart(c *gin.Context, p media.Policy) error {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(fmt.Sprintf("File size should not exceed %dMB", p.MaxBytes/media.MiB))
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return apperr.Validation("Expected a multipart form")
		}
		return apperr.Validation("Malformed multipart form")
	}
	return nil
}

// formFile opens an optional file field through policy p. A missing field yields nil.
func formFile(c *gin.Context, field string, p media.Policy) (*media.Upload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, apperr.Validation("Malformed multipart form")
	}
	return p.Open(fh)
}

func closeAll(closers ...io.Closer) {
	for _, cl := range closers {
		if cl != nil {
			cl.Close()
		}
	}
}
