// Package storage wraps the object-storage collaborator. Uploads return a
// stable {StorageID, URL} reference; deletes are keyed by StorageID.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/hassan-khan07/Chat-App/internal/models"
)

// ObjectStore is the interface the services depend on.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (*models.Image, error)
	Delete(ctx context.Context, storageID string) error
}

type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucket     string
	region     string
	publicRead bool
	presignTTL time.Duration
}

func NewS3Store(ctx context.Context, region, bucket, endpoint string, publicRead bool, presignTTL time.Duration) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		bucket:     bucket,
		region:     region,
		publicRead: publicRead,
		presignTTL: presignTTL,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (*models.Image, error) {
	key := folder + "/" + uuid.NewString() + "_" + filename
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}

	// side-upload a thumbnail for images; failures are ignored, the original
	// is what matters
	if strings.HasPrefix(contentType, "image/") {
		if thumb, terr := makeThumbnail(data); terr == nil {
			_, _ = s.uploader.Upload(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucket),
				Key:         aws.String(key + "_thumb.jpg"),
				Body:        bytes.NewReader(thumb),
				ContentType: aws.String("image/jpeg"),
			})
		}
	}

	objURL, err := s.objectURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &models.Image{StorageID: key, URL: objURL}, nil
}

func (s *S3Store) Delete(ctx context.Context, storageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	return err
}

// objectURL returns a stable public URL for public-read buckets, otherwise a
// presigned GET URL.
func (s *S3Store) objectURL(ctx context.Context, key string) (string, error) {
	if s.publicRead {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key)), nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
