package storage

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"spartan/trainer/internal/config"
)

// s3Storage keeps rendered export documents in an S3-compatible bucket.
type s3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Storage connects to the bucket configured under s3.*. Endpoint is
// optional; when set (MinIO, Spaces) path-style addressing is used.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (FileStorage, error) {
	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{PartitionID: "aws", URL: cfg.Endpoint, SigningRegion: cfg.Region}, nil
		})
		opts = append(opts, awsCfg.WithEndpointResolverWithOptions(resolver))
	}

	sdkCfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for export storage: %v", err)
		return nil, err
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	log.Printf("INFO: Export storage ready (endpoint: %q, bucket: %s)", cfg.Endpoint, cfg.BucketName)

	return &s3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketName,
	}, nil
}

// PutObject stores a rendered export. The object is marked as an attachment
// named after the last key segment so browsers keep the export file name.
func (s *s3Storage) PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(objectKey),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(attachmentDisposition(objectKey)),
		ContentLength:      aws.Int64(int64(len(body))),
		Body:               bytes.NewReader(body),
	})
	if err != nil {
		log.Printf("ERROR: Failed to store export '%s' in bucket '%s': %v", objectKey, s.bucket, err)
		return wrapKeyErr("put object", objectKey, err)
	}
	return nil
}

// GeneratePresignedDownloadURL signs a GET for an export. The response
// disposition is forced as well, for objects uploaded without one.
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(objectKey),
		ResponseContentDisposition: aws.String(attachmentDisposition(objectKey)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		log.Printf("ERROR: Failed to presign export download '%s': %v", objectKey, err)
		return "", wrapKeyErr("presign get", objectKey, err)
	}
	return req.URL, nil
}

// DeleteObject removes an export, used when its job record could not be saved.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		log.Printf("ERROR: Failed to delete export '%s' from bucket '%s': %v", objectKey, s.bucket, err)
		return wrapKeyErr("delete object", objectKey, err)
	}
	log.Printf("INFO: Deleted export '%s' from bucket '%s'", objectKey, s.bucket)
	return nil
}
