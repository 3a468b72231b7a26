package dataset

import (
	"context"
	"io"
	"path"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"

	"github.com/mineral-insights/mineralboard/internal/config"
)

// S3Source reads dataset files from an S3-compatible bucket (AWS S3 or
// MinIO). Keys are the manifest file names under an optional prefix.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates an S3 source. Credentials fall back to the default
// AWS chain unless a static access key is configured.
func NewS3Source(ctx context.Context, cfg config.S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("dataset: s3 bucket required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Source{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: s3 get %s", key)
	}
	return out.Body, nil
}
