package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	bucket  string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestObjectKey(t *testing.T) {
	key, ok := ObjectKey("r2://stems/loop.wav")
	assert.True(t, ok)
	assert.Equal(t, "stems/loop.wav", key)

	_, ok = ObjectKey("/tmp/loop.wav")
	assert.False(t, ok)
	_, ok = ObjectKey("r2://")
	assert.False(t, ok)
}

func TestDownloadToFile(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"stems/loop.wav": "RIFF...."}}
	c := &R2Client{Bucket: "audio", S3: fake}

	dst := filepath.Join(t.TempDir(), "loop.wav")
	require.NoError(t, c.DownloadToFile(context.Background(), "stems/loop.wav", dst))
	assert.Equal(t, "audio", fake.bucket)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "RIFF....", string(data))

	err = c.DownloadToFile(context.Background(), "missing.wav", dst)
	assert.ErrorContains(t, err, "missing.wav")
}

func TestNewR2ClientRequiresCredentials(t *testing.T) {
	_, err := NewR2Client(context.Background(), Credentials{AccessKeyID: "key", SecretAccessKey: "secret"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "missing account id, bucket")

	assert.Empty(t, Credentials{AccountID: "a", AccessKeyID: "k", SecretAccessKey: "s", Bucket: "b"}.Missing())
}
