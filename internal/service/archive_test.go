package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3PhotoArchive_Archive(t *testing.T) {
	t.Run("uploads under digest key", func(t *testing.T) {
		putter := &fakePutter{}
		archive := &S3PhotoArchive{client: putter, bucket: "photos-bucket"}

		key, err := archive.Archive(context.Background(), testPhoto())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "photos/"+PhotoDigest(testPhoto())))
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Equal(t, "photos-bucket", aws.ToString(putter.input.Bucket))
		assert.Equal(t, key, aws.ToString(putter.input.Key))
		assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
		assert.Equal(t, pngBytes, putter.body)
	})

	t.Run("upload failure", func(t *testing.T) {
		archive := &S3PhotoArchive{client: &fakePutter{err: errors.New("access denied")}, bucket: "b"}

		_, err := archive.Archive(context.Background(), testPhoto())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}
