package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Client stores database dumps in an S3-compatible bucket.
type Client struct {
	s3     *s3.Client
	region string
}

// Object is a stored dump.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// NewClient creates a client with static credentials. An empty endpoint uses
// the AWS endpoint for region; pathStyle is needed by most self-hosted stores.
func NewClient(ctx context.Context, endpoint, region, accessKey, secretKey string, pathStyle bool) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
	})

	return &Client{s3: client, region: region}, nil
}

// CreateBucket creates a new S3 bucket in the client's region.
// Returns nil if the bucket already exists and is owned by us.
func (c *Client) CreateBucket(ctx context.Context, bucketName string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}
	// us-east-1 is the implicit location and AWS rejects it as a constraint.
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}
	_, err := c.s3.CreateBucket(ctx, input)
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return nil
}

// BucketExists checks if a bucket exists and is accessible.
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// ListObjects lists every object under prefix, following continuation tokens.
func (c *Client) ListObjects(ctx context.Context, bucketName, prefix string) ([]Object, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(c.s3, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNotFoundError(err) {
				return nil, fmt.Errorf("bucket %s does not exist: %w", bucketName, err)
			}
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucketName, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			objects = append(objects, Object{
				Key:          *obj.Key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// PutObject uploads size bytes read from body. Plain HTTP endpoints need a
// body that implements io.Seeker so the payload can be signed.
func (c *Client) PutObject(ctx context.Context, bucketName, key string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/sql"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucketName, err)
	}
	return nil
}

// errorCode returns the S3 error code carried by err, or "" if there is none.
// S3-compatible services do not always return the SDK's typed errors, so the
// typed errors are mapped onto their codes first.
func errorCode(err error) string {
	var (
		owned    *types.BucketAlreadyOwnedByYou
		noBucket *types.NoSuchBucket
		notFound *types.NotFound
		apiErr   smithy.APIError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &owned):
		return "BucketAlreadyOwnedByYou"
	case errors.As(err, &noBucket):
		return "NoSuchBucket"
	case errors.As(err, &notFound):
		return "NotFound"
	case errors.As(err, &apiErr):
		return apiErr.ErrorCode()
	}
	return ""
}

func isBucketAlreadyOwnedByYou(err error) bool {
	return errorCode(err) == "BucketAlreadyOwnedByYou"
}

func isNotFoundError(err error) bool {
	switch errorCode(err) {
	case "NotFound", "NoSuchBucket", "404":
		return true
	}
	return false
}
