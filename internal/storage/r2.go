// Package storage archives screenshots and reports to Cloudflare R2 through the S3 API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Archiver uploads objects to one bucket and returns their public URL.
type R2Archiver struct {
	client    putObjectAPI
	bucket    string
	publicURL string
}

// NewR2Archiver builds an S3 client against the account's R2 endpoint.
func NewR2Archiver(ctx context.Context, cfg *config.Config) (*R2Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID))
	})
	return newArchiver(client, cfg.R2BucketName, cfg.R2PublicURL), nil
}

func newArchiver(client putObjectAPI, bucket, publicURL string) *R2Archiver {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", bucket)
	}
	return &R2Archiver{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Put uploads body under key and returns the object's public URL.
func (a *R2Archiver) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", a.publicURL, key), nil
}
