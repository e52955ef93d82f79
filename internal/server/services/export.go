package services

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/stockkeeper/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Exporter uploads export documents to an S3-compatible bucket and hands
// out presigned GET URLs for them.
type S3Exporter struct {
	bucket   string
	validity time.Duration
	put      objectPutter
	presign  getPresigner
}

func NewS3Exporter(ctx context.Context, cfg *sc.Config) (*S3Exporter, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		// MinIO serves buckets under the path, not as subdomains
		o.UsePathStyle = true
	})

	return &S3Exporter{
		bucket:   cfg.S3Bucket,
		validity: cfg.ExportURLValidityDuration,
		put:      client,
		presign:  s3.NewPresignClient(client),
	}, nil
}

// Export stores body under key and returns a presigned URL to fetch it.
func (e *S3Exporter) Export(ctx context.Context, key string, body []byte) (string, error) {
	_, err := e.put.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}

	req, err := e.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(e.validity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
