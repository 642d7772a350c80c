package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appConfig "github.com/kendall-kelly/restaurant-pos/config"
	"github.com/kendall-kelly/restaurant-pos/models"
)

// ReceiptArchive stores receipt documents outside the local journal
type ReceiptArchive interface {
	UploadReceipt(ctx context.Context, receipt *models.Receipt) (string, error)
	GetPresignedURL(ctx context.Context, key string) (string, error)
	DeleteReceipt(ctx context.Context, key string) error
}

// S3Service archives receipts as JSON objects in an S3 bucket
type S3Service struct {
	client *s3.Client
	bucket string
}

// InitS3Service initializes the S3 receipt archive with AWS credentials
func InitS3Service(cfg *appConfig.Config) (*S3Service, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	// Without static keys the default chain (instance role, shared profile) applies
	awsConfig, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Service{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// ReceiptKey is receipts/<yyyy>/<mm>/<order id>_<uuid>.json
func ReceiptKey(receipt *models.Receipt) string {
	paid := receipt.PaidAt.UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%d_%s.json", paid.Year(), int(paid.Month()), receipt.OrderID, uuid.NewString())
}

// UploadReceipt puts the receipt JSON in the bucket and returns its key
func (s *S3Service) UploadReceipt(ctx context.Context, receipt *models.Receipt) (string, error) {
	content, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := ReceiptKey(receipt)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// GetPresignedURL generates a presigned URL for reading an archived receipt
// The URL expires after 1 hour
func (s *S3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	log.Printf("Generated presigned URL for key %s", key)
	return request.URL, nil
}

// DeleteReceipt removes an archived receipt
func (s *S3Service) DeleteReceipt(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete receipt from S3: %w", err)
	}

	return nil
}
