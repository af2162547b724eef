package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store stores payloads in a single bucket. The deletion token is the
// object key; the ref is either a public URL or a presigned GET, depending
// on the bucket policy.
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucket     string
	region     string
	keyPrefix  string
	publicRead bool
	presignTTL time.Duration
}

type S3Options struct {
	Region     string
	Bucket     string
	Endpoint   string
	KeyPrefix  string
	PublicRead bool
	PresignTTL time.Duration
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(opts.Region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	ttl := opts.PresignTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     opts.Bucket,
		region:     opts.Region,
		keyPrefix:  opts.KeyPrefix,
		publicRead: opts.PublicRead,
		presignTTL: ttl,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, filename, contentType string, data []byte) (*StoredObject, error) {
	key := path.Join(s.keyPrefix, uuid.NewString()+path.Ext(filename))
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}

	if s.publicRead {
		ref := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key))
		return &StoredObject{Ref: ref, Token: key}, nil
	}
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return nil, err
	}
	return &StoredObject{Ref: req.URL, Token: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, token string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(token),
	})
	return err
}
