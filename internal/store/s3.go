package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gt7-dashboard/internal/metrics"
)

// S3Config holds the object-store connection settings.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // Optional, for S3-compatible stores
	Prefix          string // Base prefix prepended to all keys
	AccessKeyID     string // Optional static credentials; ambient AWS config otherwise
	SecretAccessKey string
}

// S3Store lists and fetches telemetry files from an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *logrus.Logger
}

// NewS3Store creates a store backed by S3. Static credentials from the
// config take precedence over the ambient AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config, logger *logrus.Logger) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// Name returns the store implementation name.
func (s *S3Store) Name() string {
	return "s3"
}

// List returns telemetry keys under prefix in lexical order. Keys without the
// telemetry extension are filtered out.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	full := s.prefix + prefix

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			code := classifyS3Error(err)
			metrics.StoreErrorsTotal.Inc()
			return nil, NewStoreError(s.Name(), "list", full, code, "failed to list objects", sentinelFor(code, err))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if IsTelemetryKey(key) {
				keys = append(keys, key[len(s.prefix):])
			}
		}
	}

	sort.Strings(keys)

	metrics.StoreListDuration.Observe(time.Since(start).Seconds())
	metrics.SessionsListed.Set(float64(len(keys)))

	s.logger.WithFields(logrus.Fields{
		"prefix": full,
		"count":  len(keys),
	}).Debug("Listed telemetry files")

	return keys, nil
}

// Fetch downloads the payload for key. Missing keys report ErrNotFound.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	full := s.prefix + key

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		code := classifyS3Error(err)
		metrics.StoreErrorsTotal.Inc()
		if code == ErrCodeNotFound {
			return nil, NewStoreError(s.Name(), "fetch", key, code, "no such telemetry file", ErrNotFound)
		}
		return nil, NewStoreError(s.Name(), "fetch", key, code, "failed to fetch object", sentinelFor(code, err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.StoreErrorsTotal.Inc()
		return nil, NewStoreError(s.Name(), "fetch", key, ErrCodeNetworkError, "failed to read object body", err)
	}

	metrics.StoreFetchesTotal.Inc()
	metrics.StoreFetchDuration.Observe(time.Since(start).Seconds())

	return data, nil
}

// Ping verifies bucket access for readiness checks.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not reachable: %w", s.bucket, err)
	}
	return nil
}

// sentinelFor maps a classified error code to the package sentinel callers
// match with errors.Is, keeping the raw error when no sentinel applies.
func sentinelFor(code string, err error) error {
	switch code {
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeAccessDenied:
		return ErrAccessDenied
	}
	return err
}

func classifyS3Error(err error) string {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	switch {
	case errors.As(err, &noKey):
		return ErrCodeNotFound
	case errors.As(err, &noBucket):
		return ErrCodeNotFound
	}

	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrCodeNotFound
		case "AccessDenied":
			return ErrCodeAccessDenied
		case "InternalError", "SlowDown":
			return ErrCodeServerError
		}
	}
	return ErrCodeUnknown
}
