package datastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"
	s3_pq "github.com/xitongsys/parquet-go-source/s3"

	"github.com/danthegoodman1/pqbridge/parquet_metadata"
)

const parquetContentType = "application/vnd.apache.parquet"

type (
	S3Config struct {
		Bucket   string
		Region   string
		Endpoint string
	}

	S3DataStore struct {
		bucket     string
		client     s3iface.S3API
		uploader   *s3manager.Uploader
		downloader *s3manager.Downloader
	}
)

// NewS3DataStore uses credentials from the AWS_* environment variables.
func NewS3DataStore(cfg S3Config) (*S3DataStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("missing S3 bucket name")
	}
	s3Config := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	return &S3DataStore{
		bucket:     cfg.Bucket,
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
	}, nil
}

func (sds *S3DataStore) Put(ctx context.Context, key string, b []byte) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	logger := zerolog.Ctx(ctx)

	s := time.Now()
	_, err = sds.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(sds.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String(parquetContentType),
	})
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")
	return nil
}

func (sds *S3DataStore) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)

	buf := &aws.WriteAtBuffer{}

	s := time.Now()
	_, err = sds.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(sds.bucket),
		Key:    aws.String(key),
	})
	if isNoSuchKey(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error downloading from s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded file from s3")

	return buf.Bytes(), nil
}

// Inspect issues ranged reads for the footer instead of downloading the file.
func (sds *S3DataStore) Inspect(ctx context.Context, key string) (*parquet_metadata.Summary, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	r, err := s3_pq.NewS3FileReaderWithClient(ctx, sds.client, sds.bucket, key)
	if isNoSuchKey(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating new s3 file reader: %w", err)
	}
	defer r.Close()
	return parquet_metadata.InspectFile(r)
}

func (sds *S3DataStore) Shutdown(context.Context) error {
	return nil
}

func isNoSuchKey(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
