package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipesnap/backend/internal/service"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// multipart overhead allowed on top of the photo itself
const formOverhead = 1 << 20

// readPhotoUpload extracts the photo from a multipart "photo" field or a
// JSON {"photo_data_uri": ...} body
func readPhotoUpload(c *gin.Context, limit int64) (*types.Photo, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*limit+formOverhead)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return readPhotoField(c, limit)
	}

	var req types.SetPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, service.ErrPhotoTooLarge
		}
		return nil, fmt.Errorf("%w: %v", service.ErrNoPhoto, err)
	}

	photo, err := service.ParseDataURI(req.PhotoDataURI)
	if err != nil {
		return nil, err
	}
	if int64(len(photo.Data)) > limit {
		return nil, service.ErrPhotoTooLarge
	}
	return photo, nil
}

func readPhotoField(c *gin.Context, limit int64) (*types.Photo, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, service.ErrPhotoTooLarge
		}
		return nil, service.ErrNoPhoto
	}
	if header.Size > limit {
		return nil, service.ErrPhotoTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer func() { _ = file.Close() }()

	return service.ReadPhoto(file, limit)
}
