package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// expiresMeta is the object metadata key holding the RFC 3339 expiry.
const expiresMeta = "dotgraph-expires-at"

// s3API is the subset of the S3 client used by S3Cache.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures [NewS3Cache].
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // custom endpoint for MinIO and similar; enables path-style addressing
}

// S3Cache stores entries as objects in an S3-compatible bucket. Expiry is
// recorded in object metadata and checked on read; use a bucket lifecycle
// rule to reclaim the space.
type S3Cache struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Cache creates a cache backed by the given bucket. Credentials come
// from the default AWS chain, or from AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY via static credentials when an endpoint is set.
func NewS3Cache(ctx context.Context, opts S3Options) (*S3Cache, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.Endpoint))
		if id, secret := envCredentials(); id != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(id, secret, "")))
		}
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, unavailable("s3", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.Endpoint != ""
	})
	return newS3Cache(client, opts.Bucket, opts.Prefix), nil
}

func newS3Cache(client s3API, bucket, prefix string) *S3Cache {
	return &S3Cache{client: client, bucket: bucket, prefix: prefix}
}

// Get downloads an object. Missing and expired objects are misses.
func (c *S3Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer out.Body.Close()

	if v, ok := out.Metadata[expiresMeta]; ok {
		if exp, err := time.Parse(time.RFC3339Nano, v); err == nil && expired(exp) {
			return nil, false, nil
		}
	}
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set uploads an object.
func (c *S3Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	}
	if exp := expiry(ttl); !exp.IsZero() {
		in.Metadata = map[string]string{expiresMeta: exp.UTC().Format(time.RFC3339Nano)}
	}
	_, err := c.client.PutObject(ctx, in)
	return err
}

// Delete removes an object.
func (c *S3Cache) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	return err
}

// Close does nothing; the S3 client holds no connections that need closing.
func (c *S3Cache) Close() error {
	return nil
}

func (c *S3Cache) objectKey(key string) string {
	dir, name := shard(key)
	return path.Join(c.prefix, dir, name)
}

var _ Cache = (*S3Cache)(nil)
