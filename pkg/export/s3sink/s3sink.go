// Package s3sink delivers export artifacts to an S3 bucket.
package s3sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/export"
)

// PutObjectAPI is the subset of *s3.Client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink uploads artifacts as "{prefix}/{name}".
type Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New loads the default AWS configuration (environment, shared config,
// instance role) and returns a sink for bucket.
func New(ctx context.Context, bucket, prefix string) (*Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket must be set")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewWithClient returns a sink using an existing client.
func NewWithClient(client PutObjectAPI, bucket, prefix string) *Sink {
	return &Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key an artifact name is stored under.
func (s *Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put implements export.Sink. PutObject is atomic, so a failed upload
// leaves no object behind.
func (s *Sink) Put(ctx context.Context, a *export.Artifact) (string, error) {
	key := s.Key(a.Name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Data),
		ContentType:   aws.String(a.ContentType()),
		ContentLength: aws.Int64(int64(len(a.Data))),
		Metadata: map[string]string{
			"artifact-id": a.ID,
			"width":       fmt.Sprint(a.Width),
			"height":      fmt.Sprint(a.Height),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	loc := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	logrus.WithFields(logrus.Fields{"artifact": a.ID, "location": loc}).Debug("artifact uploaded")
	return loc, nil
}
