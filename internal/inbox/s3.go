package inbox

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/safetrade/site/internal/clock"
	siteerrors "github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/widget"
)

// PutObjectAPI is the part of the S3 client the inbox uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores each submission as a JSON object under
// <prefix>/YYYY/MM/DD/<unix-nanos>-<random>.json.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	box := inbox.NewS3(s3.NewFromConfig(cfg), "site-inbox", "contact/")
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
	clock  clock.Clock
}

// NewS3 creates an S3 inbox writing to bucket under prefix.
func NewS3(client PutObjectAPI, bucket, prefix string) *S3 {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix, clock: clock.Real()}
}

// NewS3FromConfig loads AWS credentials from the environment and creates an
// S3 inbox. A non-empty Endpoint selects an S3-compatible service with
// path-style addressing.
func NewS3FromConfig(ctx context.Context, c S3Config) (*S3, error) {
	if c.Bucket == "" {
		return nil, siteerrors.New("S021").WithDetail("bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, siteerrors.New("S021").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(client, c.Bucket, c.Prefix), nil
}

// Submit implements widget.Submitter.
func (s *S3) Submit(ctx context.Context, sub widget.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	key, err := s.key(sub)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"locale": sub.Locale,
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (s *S3) key(sub widget.Submission) (string, error) {
	at := sub.ReceivedAt
	if at.IsZero() {
		at = s.clock.Now()
	}
	at = at.UTC()

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return fmt.Sprintf("%s%s/%d-%s.json", s.prefix, at.Format("2006/01/02"), at.UnixNano(), hex.EncodeToString(b[:])), nil
}
