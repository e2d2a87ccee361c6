package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func newTestArchive(t *testing.T, prefix string) (*Archive, *fakeS3) {
	t.Helper()
	a, err := NewArchive(Config{Region: "us-east-1", AccessKey: "k", SecretKey: "s", Bucket: "raw", Prefix: prefix})
	require.NoError(t, err)
	fake := &fakeS3{}
	a.client = fake
	a.now = func() time.Time { return time.Date(2024, 5, 7, 23, 30, 0, 0, time.FixedZone("X", -3*3600)) }
	return a, fake
}

func TestArchive_Put(t *testing.T) {
	a, fake := newTestArchive(t, "/bot/raw/")
	raw := []byte(`{"update_id":42}`)

	require.NoError(t, a.Put(context.Background(), 42, raw))
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "raw", aws.ToString(in.Bucket))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Regexp(t, regexp.MustCompile(`^bot/raw/2024/05/08/42-[0-9a-f-]{36}\.json$`), aws.ToString(in.Key))
	assert.Equal(t, raw, fake.bodies[0])
}

func TestArchive_KeysAreUnique(t *testing.T) {
	a, _ := newTestArchive(t, "")
	assert.NotEqual(t, a.key(1), a.key(1))
	assert.Regexp(t, `^updates/`, a.key(1))
}

func TestArchive_Errors(t *testing.T) {
	a, fake := newTestArchive(t, "")
	assert.Error(t, a.Put(context.Background(), 1, nil))

	fake.err = errors.New("denied")
	assert.ErrorContains(t, a.Put(context.Background(), 1, []byte("{}")), "denied")
}

func TestNewArchive_Validation(t *testing.T) {
	_, err := NewArchive(Config{})
	assert.ErrorContains(t, err, "bucket")
	_, err = NewArchive(Config{Bucket: "b"})
	assert.ErrorContains(t, err, "region")
	_, err = NewArchive(Config{Bucket: "b", Region: "r"})
	assert.ErrorContains(t, err, "credentials")
}
