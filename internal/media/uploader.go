// Package media stores uploaded videos, thumbnails and avatars in S3 and
// returns their public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/config"
)

type Kind string

const (
	KindVideo     Kind = "video"
	KindThumbnail Kind = "thumbnail"
	KindAvatar    Kind = "avatar"
)

const (
	MaxVideoSize = 500 << 20
	MaxImageSize = 5 << 20
)

type rule struct {
	folder  string
	maxSize int64
	types   map[string]string // content type -> extension
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var rules = map[Kind]rule{
	KindVideo: {
		folder:  "videos",
		maxSize: MaxVideoSize,
		types: map[string]string{
			"video/mp4":        ".mp4",
			"video/webm":       ".webm",
			"video/quicktime":  ".mov",
			"video/x-matroska": ".mkv",
		},
	},
	KindThumbnail: {folder: "thumbnails", maxSize: MaxImageSize, types: imageTypes},
	KindAvatar:    {folder: "avatars", maxSize: MaxImageSize, types: imageTypes},
}

// ObjectPutter is the part of *s3.Client the uploader uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	newKey  func() string
}

// NewS3Uploader builds an uploader from the AWS settings. Static
// credentials are used when given, otherwise the default AWS chain.
func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	if cfg.Endpoint != "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return NewUploader(client, cfg.Bucket, baseURL), nil
}

func NewUploader(client ObjectPutter, bucket, baseURL string) *Uploader {
	return &Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		newKey:  uuid.NewString,
	}
}

// Validate checks the content type and size allowed for kind and returns
// the file extension to store it under.
func Validate(kind Kind, size int64, contentType string) (string, error) {
	r, ok := rules[kind]
	if !ok {
		return "", apperror.Validation(fmt.Sprintf("Unknown upload kind %q", kind))
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", apperror.Validation("Invalid content type")
	}
	ext, ok := r.types[mediaType]
	if !ok {
		return "", apperror.Validation(fmt.Sprintf("Unsupported %s type %s", kind, mediaType))
	}
	if size <= 0 {
		return "", apperror.Validation("File is empty")
	}
	if size > r.maxSize {
		return "", apperror.Validation(fmt.Sprintf("File exceeds the %d MB limit", r.maxSize>>20))
	}
	return ext, nil
}

// Upload stores body under a fresh key and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, kind Kind, body io.Reader, size int64, contentType string) (string, error) {
	ext, err := Validate(kind, size, contentType)
	if err != nil {
		return "", err
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	key := path.Join(rules[kind].folder, u.newKey()+ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mediaType),
	})
	if err != nil {
		return "", apperror.Upstream("Failed to upload file", err)
	}
	return u.baseURL + "/" + key, nil
}
