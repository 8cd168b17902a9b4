// Package publish mirrors written artifacts to object storage.
//
// Publishing is best effort: the local artifact is the source of truth and a
// failed upload never fails a build.
//
//	pub, err := publish.NewS3Publisher(ctx, publish.Options{
//	    Bucket: "my-routes",
//	    Prefix: "site/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = pub.Publish(ctx, "config.tsx", data)
package publish

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher uploads an artifact under a name.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) error
}

// S3API is the subset of the S3 client used by S3Publisher.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures an S3Publisher.
type Options struct {
	Bucket string

	// Prefix is prepended to every object key (e.g. "site/").
	Prefix string

	// Region overrides the region from the AWS environment.
	Region string

	// Endpoint points the client at an S3-compatible store and switches to
	// path-style addressing.
	Endpoint string
}

// S3Publisher stores artifacts in an S3 bucket.
type S3Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Publisher creates a publisher using the default AWS credential chain.
func NewS3Publisher(ctx context.Context, opts Options) (*S3Publisher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("publish: bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3PublisherWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client.
func NewS3PublisherWithClient(client S3API, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for name.
func (p *S3Publisher) Key(name string) string {
	return p.prefix + path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// Publish uploads data to the bucket under Key(name).
func (p *S3Publisher) Publish(ctx context.Context, name string, data []byte) error {
	key := p.Key(name)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return fmt.Errorf("publish: put s3://%s/%s: %w", p.bucket, key, err)
	}
	return nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".go":
		return "text/x-go; charset=utf-8"
	case ".ts", ".tsx":
		return "application/typescript; charset=utf-8"
	default:
		return "text/javascript; charset=utf-8"
	}
}
