package media

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/mdobak/go-xerrors"
)

// S3Storage uploads images to a bucket and links them through BaseURL.
type S3Storage struct {
	bucket   string
	baseURL  string
	uploader *s3manager.Uploader
	svc      *s3.S3
}

func NewS3Storage(bucket, region, baseURL string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, xerrors.New(err)
	}

	if baseURL == "" {
		baseURL = "https://" + bucket + ".s3." + region + ".amazonaws.com/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &S3Storage{
		bucket:   bucket,
		baseURL:  baseURL,
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	key := GenerateKey(dir, filename)
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", xerrors.Newf("upload %s to s3: %w", key, err)
	}
	return key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return xerrors.Newf("delete %s from s3: %w", key, err)
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + key
}
