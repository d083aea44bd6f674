// SPDX-License-Identifier: MIT
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	applog "eeg/internal/log"
	"eeg/internal/record"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	parquet "github.com/parquet-go/parquet-go"
)

// S3Config locates the bucket and credentials. An empty Endpoint uses AWS;
// set it and PathStyle for MinIO or LocalStack.
type S3Config struct {
	Bucket      string
	Prefix      string
	Region      string
	Endpoint    string
	AccessKey   string
	SecretKey   string
	PathStyle   bool
	Compression string
}

// PutObjectAPI is the subset of *s3.Client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the default credential chain, or from
// static keys when AccessKey is set.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var loaders []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}

// S3Store uploads each batch as its own parquet object under
// prefix/participant/batch-NNNNN.parquet.
type S3Store struct {
	client      PutObjectAPI
	bucket      string
	prefix      string
	participant string
	compression parquet.WriterOption

	mu    sync.Mutex
	batch int
}

var _ Backend = (*S3Store)(nil)

func NewS3Store(client PutObjectAPI, cfg S3Config, participant string) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("store: s3 bucket is required")
	}
	opt, err := compressionOption(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return &S3Store{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      strings.Trim(cfg.Prefix, "/"),
		participant: participant,
		compression: opt,
	}, nil
}

// Key returns the object key of batch n.
func (s *S3Store) Key(n int) string {
	return path.Join(s.prefix, s.participant, fmt.Sprintf("batch-%05d.parquet", n))
}

func (s *S3Store) AppendBatch(ctx context.Context, rows []record.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	pw := parquet.NewGenericWriter[Record](&buf, s.compression)
	if _, err := pw.Write(Stamp(s.participant, rows)); err != nil {
		return fmt.Errorf("store: parquet encode: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("store: parquet encode: %w", err)
	}

	key := s.Key(s.batch)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/parquet"),
	})
	if err != nil {
		return fmt.Errorf("store: put s3://%s/%s: %w", s.bucket, key, err)
	}
	applog.Debugw("store: s3 object written", "bucket", s.bucket, "key", key, "rows", len(rows), "bytes", buf.Len())
	s.batch++
	return nil
}

// Close is a no-op; every batch is already uploaded.
func (s *S3Store) Close() error { return nil }
