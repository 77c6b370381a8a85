package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads batch artifacts under <prefix>/<batch id>/.
type S3Sink struct {
	client putObjectAPI
	bucket string
	prefix string
}

var _ ports.ResultSink = (*S3Sink)(nil)

func NewS3Sink(cfg aws.Config, bucket, prefix string) *S3Sink {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return newS3Sink(client, bucket, prefix)
}

func newS3Sink(client putObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) WriteResults(ctx context.Context, batchID string, records []domain.ResultRecord) (string, error) {
	if records == nil {
		records = []domain.ResultRecord{}
	}
	return s.upload(ctx, batchID, "results.json", records)
}

func (s *S3Sink) WriteReport(ctx context.Context, report domain.BatchReport) (string, error) {
	return s.upload(ctx, report.BatchID, "report.json", report)
}

func (s *S3Sink) upload(ctx context.Context, batchID, name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	key := path.Join(s.prefix, batchID, name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
