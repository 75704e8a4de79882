package service

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/blake2b"

	"github.com/pageza/recipesnap/backend/internal/types"
)

var (
	ErrNoPhoto              = errors.New("no photo selected")
	ErrPhotoTooLarge        = errors.New("photo exceeds the size limit")
	ErrUnsupportedMediaType = errors.New("photo is not a supported image type")
	ErrInvalidDataURI       = errors.New("invalid data URI")
)

// ReadPhoto reads an uploaded image of at most limit bytes. The media type is
// sniffed from the content; whatever the client claimed is ignored.
func ReadPhoto(r io.Reader, limit int64) (*types.Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoPhoto
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPhotoTooLarge, limit)
	}
	return newPhoto(data)
}

func newPhoto(data []byte) (*types.Photo, error) {
	mediaType := mimetype.Detect(data).String()
	// strip parameters such as "; charset=utf-8"
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
	return &types.Photo{MediaType: mediaType, Data: data}, nil
}

// ParseDataURI decodes "data:<mimetype>;base64,<payload>". The declared type
// must agree with the sniffed one on being an image.
func ParseDataURI(uri string) (*types.Photo, error) {
	if uri == "" {
		return nil, ErrNoPhoto
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}
	declared, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidDataURI)
	}
	if !strings.HasPrefix(declared, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, declared)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrNoPhoto
	}
	return newPhoto(data)
}

// DataURI renders the photo in its canonical self-describing form
func DataURI(photo *types.Photo) string {
	return "data:" + photo.MediaType + ";base64," + base64.StdEncoding.EncodeToString(photo.Data)
}

// PhotoDigest returns the hex BLAKE2b-256 of the photo bytes
func PhotoDigest(photo *types.Photo) string {
	sum := blake2b.Sum256(photo.Data)
	return hex.EncodeToString(sum[:])
}

// photoExtension picks a file extension for archived photos
func photoExtension(mediaType string) string {
	if ext := mimetype.Lookup(mediaType); ext != nil {
		return ext.Extension()
	}
	return ""
}
