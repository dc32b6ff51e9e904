// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docmark/pkg/types"
)

func writeMD(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDirSink_MovesAndReplaces(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "output")
	d, err := NewDirSink(out)
	require.NoError(t, err)

	writeMD(t, out, "doc.md", "old and longer content")
	p := writeMD(t, src, "doc.md", "new")

	dest, err := d.Deliver(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "doc.md"), dest)
	assert.NoFileExists(t, p)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDirSink_AlreadyInPlace(t *testing.T) {
	out := t.TempDir()
	d, err := NewDirSink(out)
	require.NoError(t, err)
	p := writeMD(t, out, "doc.md", "x")

	dest, err := d.Deliver(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, dest)
	assert.FileExists(t, p)
}

func TestDirSink_MissingSource(t *testing.T) {
	d, err := NewDirSink(t.TempDir())
	require.NoError(t, err)
	_, err = d.Deliver(context.Background(), filepath.Join(t.TempDir(), "gone.md"))
	assert.Error(t, err)
}

func TestDirSink_Path(t *testing.T) {
	d := &DirSink{Dir: "/srv/out"}
	p, err := d.Path("doc.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/out", "doc.md"), p)

	for _, bad := range []string{"", ".", "..", "../etc/passwd", `a\b.md`, "sub/doc.md"} {
		_, err := d.Path(bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}
}

type fakeUploader struct {
	bucket, key, contentType, body string
	err                            error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.bucket, f.key, f.contentType, f.body = *in.Bucket, *in.Key, *in.ContentType, string(data)
	return &manager.UploadOutput{Location: "https://example/" + f.key}, nil
}

func TestS3Sink_Deliver(t *testing.T) {
	up := &fakeUploader{}
	s := &S3Sink{bucket: "docs", prefix: "markdown", uploader: up}
	p := writeMD(t, t.TempDir(), "scan.md", "# Scan\n")

	uri, err := s.Deliver(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "s3://docs/markdown/scan.md", uri)
	assert.Equal(t, "docs", up.bucket)
	assert.Equal(t, "markdown/scan.md", up.key)
	assert.Equal(t, "text/markdown; charset=utf-8", up.contentType)
	assert.Equal(t, "# Scan\n", up.body)
	assert.FileExists(t, p)

	s.uploader = &fakeUploader{err: errors.New("access denied")}
	_, err = s.Deliver(context.Background(), p)
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3Sink(t *testing.T) {
	_, err := NewS3Sink(context.Background(), types.S3Config{})
	assert.Error(t, err)

	s, err := NewS3Sink(context.Background(), types.S3Config{
		Bucket:    "docs",
		Prefix:    "/md/",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "md/a.md", s.Key("/tmp/a.md"))
}

func TestChain(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	d, err := NewDirSink(out)
	require.NoError(t, err)
	up := &fakeUploader{}
	chain := Chain{d, &S3Sink{bucket: "b", uploader: up}}

	p := writeMD(t, src, "r.md", "body")
	loc, err := chain.Deliver(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "s3://b/r.md", loc)
	assert.Equal(t, "body", up.body, "upload reads the moved file")
	assert.FileExists(t, filepath.Join(out, "r.md"))
	assert.Same(t, d, chain.Dir())

	loc, err = Chain{}.Deliver(context.Background(), "x.md")
	require.NoError(t, err)
	assert.Equal(t, "x.md", loc)
	assert.Nil(t, Chain{}.Dir())
}

func TestFromConfig(t *testing.T) {
	c, err := FromConfig(context.Background(), types.DeliveryConfig{})
	require.NoError(t, err)
	assert.Empty(t, c)

	out := filepath.Join(t.TempDir(), "out")
	c, err = FromConfig(context.Background(), types.DeliveryConfig{OutputDir: out})
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.DirExists(t, out)
}
