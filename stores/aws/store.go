package aws

import (
	"bytes"
	"certificate-designer/core"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Store struct {
	client ObjectAPI
	bucket string
}

// NewStore creates a new S3-based store using the default AWS config chain.
func NewStore(ctx context.Context, bucketName string) (*s3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewStoreWithClient(s3.NewFromConfig(cfg), bucketName), nil
}

func NewStoreWithClient(client ObjectAPI, bucketName string) *s3Store {
	return &s3Store{client: client, bucket: bucketName}
}

func (s *s3Store) objectKey(key string) (string, error) {
	// The key must be a simple name, not a path.
	if key == "" || key == "." || key == ".." || path.Base(key) != key {
		return "", fmt.Errorf("invalid collection key %q", key)
	}
	return path.Join("collections", key+".json"), nil
}

func (s *s3Store) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"collection": key, "bucket": s.bucket, "object_key": objectKey})

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Debug("Collection object not found")
			return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
		}
		log.WithError(err).Error("Failed to get collection object")
		return nil, fmt.Errorf("failed to get collection %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", key, err)
	}
	log.WithField("data_length", len(data)).Debug("Collection loaded")
	return data, nil
}

func (s *s3Store) SaveCollection(ctx context.Context, key string, data []byte) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"collection": key, "bucket": s.bucket}).WithError(err).Error("Failed to put collection object")
		return fmt.Errorf("failed to save collection %s: %w", key, err)
	}
	return nil
}
