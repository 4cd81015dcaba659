// Package storage keeps user-uploaded objects in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Client uploads objects to one bucket and returns their public URL.
type S3Client struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Client builds an uploader. baseURL defaults to the bucket's virtual-hosted URL.
func NewS3Client(client *s3.Client, bucket, baseURL string) *S3Client {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Client{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *S3Client) PutObject(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return c.baseURL + "/" + key, nil
}
