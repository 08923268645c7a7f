package services

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 5 * time.Minute

// S3Presigner hands out short-lived URLs so clients upload images
// straight to the bucket.
type S3Presigner struct {
	bucket    string
	presigner *s3.PresignClient
	now       func() time.Time
}

func NewS3Presigner(ctx context.Context, region, bucket string) (*S3Presigner, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket not configured")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Presigner{
		bucket:    bucket,
		presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		now:       time.Now,
	}, nil
}

// UploadURL returns a presigned PUT URL and the object key it writes to.
func (p *S3Presigner) UploadURL(ctx context.Context, folder, fileName, fileType string) (string, string, error) {
	key := objectKey(folder, fileName, p.now())
	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}
	return req.URL, key, nil
}

// ReadURL returns a presigned GET URL for key.
func (p *S3Presigner) ReadURL(ctx context.Context, key string) (string, error) {
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
