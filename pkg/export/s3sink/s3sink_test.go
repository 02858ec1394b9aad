package s3sink

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/xob0t/GoBooth/pkg/export"
)

type fakeClient struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	c := &fakeClient{}
	s := NewWithClient(c, "booth", "/exports/")
	a := &export.Artifact{ID: "01H", Name: "t-1.tiff", Format: export.FormatTIFF, Width: 2, Height: 3, Data: []byte("abc")}

	loc, err := s.Put(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if loc != "s3://booth/exports/t-1.tiff" {
		t.Errorf("location = %s", loc)
	}
	if aws.ToString(c.in.Key) != "exports/t-1.tiff" || aws.ToString(c.in.Bucket) != "booth" {
		t.Errorf("input = %s/%s", aws.ToString(c.in.Bucket), aws.ToString(c.in.Key))
	}
	if aws.ToString(c.in.ContentType) != "image/tiff" || string(c.body) != "abc" {
		t.Errorf("content = %s %q", aws.ToString(c.in.ContentType), c.body)
	}
	if c.in.Metadata["artifact-id"] != "01H" {
		t.Errorf("metadata = %v", c.in.Metadata)
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	if got := NewWithClient(&fakeClient{}, "b", "").Key("x.png"); got != "x.png" {
		t.Errorf("Key = %s", got)
	}
}

func TestPutError(t *testing.T) {
	s := NewWithClient(&fakeClient{err: errors.New("denied")}, "b", "")
	if _, err := s.Put(context.Background(), &export.Artifact{Name: "x.png"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "", ""); err == nil {
		t.Fatal("expected error")
	}
}
