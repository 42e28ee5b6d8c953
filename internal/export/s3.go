package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/config"
)

const (
	MetadataTopColor    = "top-color"
	MetadataBottomColor = "bottom-color"
)

// S3Exporter uploads cards to a bucket, returning a presigned URL to fetch them.
type S3Exporter struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
	log           *zap.SugaredLogger
}

func NewS3Exporter(ctx context.Context, cfg config.S3Config) (*S3Exporter, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.EndpointURL != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Exporter{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
		log:           zap.S().Named("export").With("bucket", cfg.Bucket),
	}, nil
}

func (e *S3Exporter) Export(ctx context.Context, name string, card *yt2ig.ShareCard) (*Export, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	buf := new(bytes.Buffer)
	if err := card.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("failed to encode card: %w", err)
	}
	key := name + ".png"
	res := newExport("", card)

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String("image/png"),
		ContentLength: aws.Int64(int64(buf.Len())),
		Metadata: map[string]string{
			MetadataTopColor:    res.TopColor,
			MetadataBottomColor: res.BottomColor,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	presigned, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = e.presignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	res.Location = presigned.URL
	e.log.Infow("exported card", "key", key)
	return res, nil
}
