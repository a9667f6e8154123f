package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/retry"
	"go.uber.org/zap"
)

// Options configures an S3-compatible bucket
type Options struct {
	Bucket          string
	Endpoint        string // empty means AWS S3
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// StorageClient writes snapshot objects to an S3-compatible bucket
type StorageClient struct {
	s3Client    *s3.Client
	bucketName  string
	endpoint    string
	retryPolicy retry.Policy
}

// NewStorageClient creates a client using static credentials
func NewStorageClient(opts Options) (*StorageClient, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	s3Opts := s3.Options{
		Region: opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token not needed
		),
	}
	if opts.Endpoint != "" {
		// MinIO and most self-hosted stores only speak path-style
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", opts.Bucket),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return &StorageClient{
		s3Client:    s3.New(s3Opts),
		bucketName:  opts.Bucket,
		endpoint:    strings.TrimRight(opts.Endpoint, "/"),
		retryPolicy: retry.ObjectStorage(),
	}, nil
}

// Put uploads body under key and returns the object's location
func (s *StorageClient) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	start := time.Now()
	operation := "putObject"

	err := retry.Do(ctx, s.retryPolicy, "objectstore.Put", func() error {
		_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
		return err
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(body)),
	)

	return s.location(key), nil
}

func (s *StorageClient) location(key string) string {
	if s.endpoint == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucketName, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)
}
