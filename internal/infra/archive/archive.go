// Package archive copies submitted HAVS exports to long-term object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"fieldops-app/config"
	"fieldops-app/internal/domain/havs"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const csvContentType = "text/csv; charset=utf-8"

// Archiver stores an object under key.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// New picks the archiver for cfg. Without a bucket nothing is archived.
func New(ctx context.Context, cfg config.ArchiveConfig) (Archiver, error) {
	if cfg.Bucket == "" {
		return Noop{}, nil
	}
	return NewS3(ctx, cfg)
}

// Noop discards everything.
type Noop struct{}

func (Noop) Put(context.Context, string, []byte, string) error { return nil }

// Memory keeps objects in a map. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes to an S3 or S3-compatible bucket.
type S3 struct {
	client putObjectAPI
	bucket string
}

func NewS3(ctx context.Context, cfg config.ArchiveConfig) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func (a *S3) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// WeekKey is where a week's export for a given revision is stored, e.g.
// havs/2024-06-09/<week-id>/r1.csv.
func WeekKey(prefix string, d *havs.WeekDetails) string {
	return path.Join(prefix, d.WeekEnding.String(), d.ID, fmt.Sprintf("r%d.csv", d.RevisionNumber))
}

// Week renders the CSV export for d and stores it. It returns the object key.
func Week(ctx context.Context, a Archiver, prefix string, d *havs.WeekDetails) (string, error) {
	var buf bytes.Buffer
	if err := havs.WriteCSV(&buf, havs.ExportRows(d)); err != nil {
		return "", err
	}
	key := WeekKey(prefix, d)
	if err := a.Put(ctx, key, buf.Bytes(), csvContentType); err != nil {
		return "", err
	}
	return key, nil
}
