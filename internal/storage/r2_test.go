package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestPutReturnsPublicURL(t *testing.T) {
	client := &fakeS3{}
	a := newArchiver(client, "mlsnap", "https://cdn.example.com/")

	url, err := a.Put(context.Background(), "screenshots/42/abc.png", "image/png", []byte("\x89PNGabc"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/screenshots/42/abc.png", url)
	assert.Equal(t, "mlsnap", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, []byte("\x89PNGabc"), client.body)
}

func TestPutDefaultsToDevDomain(t *testing.T) {
	a := newArchiver(&fakeS3{}, "mlsnap", "")

	url, err := a.Put(context.Background(), "reports/a.json", "application/json", []byte("[]"))
	require.NoError(t, err)
	assert.Equal(t, "https://mlsnap.r2.dev/reports/a.json", url)
}

func TestPutWrapsErrors(t *testing.T) {
	a := newArchiver(&fakeS3{err: errors.New("access denied")}, "mlsnap", "")

	_, err := a.Put(context.Background(), "k", "image/png", nil)
	assert.ErrorContains(t, err, "upload k")
}
