// Package s3ds fetches trip extracts from an S3-compatible bucket (AWS S3,
// MinIO, Hetzner, R2 ...) using the AWS SDK v2. Objects are addressed as
// {Prefix}/{name} inside Bucket.
package s3ds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"tripetl/internal/datasource"
)

// Config configures the S3 source.
type Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the service endpoint for S3-compatible stores,
	// e.g. "https://fsn1.your-objectstorage.com".
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. When both
	// are empty the client signs requests anonymously (public buckets).
	AccessKeyID     string
	SecretAccessKey string

	UsePathStyle bool

	// Timeout bounds a single GetObject call including the body read.
	Timeout time.Duration
}

// GetObjectAPI is the subset of *s3.Client used here; tests supply a fake.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client implements datasource.Source on top of S3 GetObject.
type Client struct {
	api     GetObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

var _ datasource.Source = (*Client)(nil)

// NewClient builds an S3 client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3ds: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region:       region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return NewWithAPI(s3.New(opts), cfg), nil
}

// NewWithAPI wires an existing GetObjectAPI (a real client or a fake).
func NewWithAPI(api GetObjectAPI, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		api:     api,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		timeout: timeout,
	}
}

func (c *Client) key(name string) string {
	name = strings.TrimLeft(name, "/")
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// Locate returns the s3:// URI of name.
func (c *Client) Locate(name string) string {
	return "s3://" + c.bucket + "/" + c.key(name)
}

// Fetch downloads the named object. Missing keys wrap datasource.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3ds: %s: %w", c.Locate(name), datasource.ErrNotFound)
		}
		return nil, fmt.Errorf("s3ds: get %s: %w", c.Locate(name), err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3ds: read %s: %w", c.Locate(name), err)
	}
	return body, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var re *smithyhttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
