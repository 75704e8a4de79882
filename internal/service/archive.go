package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/recipesnap/backend/config"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// PhotoArchive stores submitted photos and returns the object key
type PhotoArchive interface {
	Archive(ctx context.Context, photo *types.Photo) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PhotoArchive uploads photos to the configured bucket
type S3PhotoArchive struct {
	client objectPutter
	bucket string
}

// NewS3PhotoArchive creates a new S3PhotoArchive instance
func NewS3PhotoArchive(s3Config *config.S3Config) *S3PhotoArchive {
	return &S3PhotoArchive{
		client: s3Config.Client,
		bucket: s3Config.BucketName,
	}
}

// PhotoKey is the object key a photo is archived under. Identical photos share a key.
func PhotoKey(photo *types.Photo) string {
	return "photos/" + PhotoDigest(photo) + photoExtension(photo.MediaType)
}

// Archive uploads the photo and returns its key
func (a *S3PhotoArchive) Archive(ctx context.Context, photo *types.Photo) (string, error) {
	key := PhotoKey(photo)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(photo.Data),
		ContentType: aws.String(photo.MediaType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	slog.DebugContext(ctx, "archived photo", "bucket", a.bucket, "key", key)
	return key, nil
}
