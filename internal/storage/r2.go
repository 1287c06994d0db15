package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Scheme prefixes track paths that live in the R2 bucket.
const Scheme = "r2://"

// ObjectKey returns the bucket key for an r2:// path.
func ObjectKey(path string) (string, bool) {
	if !strings.HasPrefix(path, Scheme) {
		return "", false
	}
	key := strings.TrimPrefix(path, Scheme)
	if key == "" {
		return "", false
	}
	return key, true
}

// ObjectGetter is the subset of the S3 API used for downloads.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ErrNotConfigured is returned when an r2:// path is used without complete
// object storage credentials.
var ErrNotConfigured = errors.New("object storage not configured")

// Credentials locate and authorize access to the bucket holding r2:// tracks.
type Credentials struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Missing names the unset fields, in declaration order.
func (c Credentials) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"account id", c.AccountID},
		{"access key id", c.AccessKeyID},
		{"secret access key", c.SecretAccessKey},
		{"bucket", c.Bucket},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type R2Client struct {
	Bucket string
	S3     ObjectGetter
}

func NewR2Client(ctx context.Context, creds Credentials) (*R2Client, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	accountID, accessKeyID, secretAccessKey, bucket := creds.AccountID, creds.AccessKeyID, creds.SecretAccessKey, creds.Bucket

	endpoint := "https://" + accountID + ".r2.cloudflarestorage.com"

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				SigningRegion:     "auto",
				HostnameImmutable: true,
			}, nil
		},
	)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &R2Client{Bucket: bucket, S3: client}, nil
}

func (c *R2Client) DownloadToFile(ctx context.Context, key, dstPath string) error {
	out, err := c.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("r2 get object %q: %w", key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("write %s: %w", dstPath, err)
	}
	return nil
}
