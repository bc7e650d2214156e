package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/campus-lostfound/api-go/config"
	"go.uber.org/zap"
)

const r2KeyPrefix = "reports/"

// ObjectClient is the part of the S3 API the R2 store uses.
type ObjectClient interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// R2Store keeps uploads in a Cloudflare R2 bucket through the S3 API.
type R2Store struct {
	client    ObjectClient
	bucket    string
	validator Validator
	logger    *zap.Logger
}

var _ Store = (*R2Store)(nil)

func NewR2Client(cfg config.R2Config) *s3.Client {
	return s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})
}

func NewR2Store(client ObjectClient, bucket string, maxSize int64, logger *zap.Logger) *R2Store {
	return &R2Store{
		client:    client,
		bucket:    bucket,
		validator: Validator{MaxSize: maxSize},
		logger:    logger.Named("r2-store"),
	}
}

func (s *R2Store) Save(ctx context.Context, upload Upload) (string, error) {
	if err := s.validator.Validate(upload); err != nil {
		return "", err
	}
	data, err := s.validator.readLimited(upload.Body)
	if err != nil {
		return "", err
	}

	key := r2KeyPrefix + objectName(upload.Filename)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Info("Stored upload", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

func (s *R2Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", ref, err)
	}
	return out.Body, nil
}
