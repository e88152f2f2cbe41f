package s3driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectStorageConfig defines the configuration needed to connect to an S3-compatible storage.
// You can use this with AWS S3, Cloudflare R2, MinIO, GCS (S3 API), etc.
type ObjectStorageConfig struct {
	Bucket    string // bucket name where files will be stored
	Prefix    string // optional key prefix, e.g. "content/"
	Region    string // AWS region or equivalent
	AccessKey string // access key for authentication
	SecretKey string // secret key for authentication
	Endpoint  string // optional custom endpoint (for R2, MinIO, etc.)
}

// ObjectStorage is the gocontent.Strategy for S3-compatible storages.
// Keys are unique, so Save overwrites.
type ObjectStorage struct {
	client s3Client
	bucket string
	prefix string
}

// NewObjectStorage initializes and returns an ObjectStorage instance using the given config.
// Returns gocontent.ErrConfig if credentials or config are invalid.
func NewObjectStorage(cfg ObjectStorageConfig) (*ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is empty", gocontent.ErrConfig)
	}

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: s3 access key and secret key are required", gocontent.ErrConfig)
	}

	storageCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return nil, fmt.Errorf("%w: %v", gocontent.ErrConfig, err)
	}

	client := s3.NewFromConfig(storageCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // needed for MinIO / R2
		}
	})

	return &ObjectStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Capabilities reports full support with no history window.
func (s *ObjectStorage) Capabilities() gocontent.Capabilities {
	return gocontent.Capabilities{
		Searchable: true,
		LoadByName: true,
		Download:   true,
	}
}

// Save uploads content to the bucket, replacing any object with the same key.
func (s *ObjectStorage) Save(ctx context.Context, content string, name string) error {
	if err := validateKey(name); err != nil {
		log.Error().Err(err).Str("name", name).Msg("invalid key")
		return gocontent.ErrInvalidName
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(s.key(name)),
		Body:                 strings.NewReader(content),
		ContentType:          aws.String("text/plain; charset=utf-8"),
		ServerSideEncryption: "AES256",
	})
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to upload file to S3")
		return translate(err, name)
	}

	return nil
}

// Load returns the content of the object stored under name.
func (s *ObjectStorage) Load(ctx context.Context, name string) (string, error) {
	body, err := s.open(ctx, name)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to read object body")
		return "", fmt.Errorf("%w: read %s: %v", gocontent.ErrTransport, name, err)
	}

	return string(data), nil
}

// Download streams the object stored under name into destination.
func (s *ObjectStorage) Download(ctx context.Context, name string, destination string) error {
	body, err := s.open(ctx, name)
	if err != nil {
		return err
	}
	defer body.Close()

	return gocontent.WriteDestination(destination, body)
}

func (s *ObjectStorage) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateKey(name); err != nil {
		log.Error().Err(err).Str("name", name).Msg("invalid key")
		return nil, gocontent.ErrInvalidName
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, translate(err, name)
	}

	return out.Body, nil
}

func (s *ObjectStorage) key(name string) string {
	return s.prefix + name
}

// translate maps S3 API error codes onto the gocontent taxonomy.
func translate(err error, name string) error {
	var apiError interface{ ErrorCode() string }
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", gocontent.ErrNotFound, name)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("%w: %s", gocontent.ErrAuth, apiError.ErrorCode())
		}
	}

	log.Error().Err(err).Str("name", name).Msg("S3 request failed")
	return fmt.Errorf("%w: %v", gocontent.ErrTransport, err)
}

// validateKey ensures that the provided key is valid (not empty, no invalid characters).
// Usage: Called internally before every request to prevent bad object names.
var fileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)

func validateKey(name string) error {
	switch {
	case len(name) == 0:
		return errors.New("key cannot be empty")
	case !fileNameRegex.MatchString(name):
		return errors.New("key contains invalid characters")
	case strings.HasPrefix(name, "/"):
		return errors.New("key cannot start with a slash")
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == "." || segment == ".." {
			return errors.New("invalid key")
		}
	}
	return nil
}
