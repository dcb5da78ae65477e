package datastore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
)

type headOnlyS3 struct {
	s3iface.S3API
	err error
}

func (h *headOnlyS3) HeadObjectWithContext(aws.Context, *s3.HeadObjectInput, ...request.Option) (*s3.HeadObjectOutput, error) {
	return nil, h.err
}

func TestS3InspectMissingKey(t *testing.T) {
	for _, code := range []string{"NotFound", s3.ErrCodeNoSuchKey} {
		t.Run(code, func(t *testing.T) {
			sds := &S3DataStore{bucket: "files", client: &headOnlyS3{err: awserr.New(code, "missing", nil)}}
			_, err := sds.Inspect(context.Background(), "ns=a/x.parquet")
			assert.True(t, errors.Is(err, ErrNotFound), err)
		})
	}

	sds := &S3DataStore{bucket: "files", client: &headOnlyS3{err: awserr.New("AccessDenied", "no", nil)}}
	_, err := sds.Inspect(context.Background(), "ns=a/x.parquet")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(awserr.New("NotFound", "", nil)))
	assert.True(t, isNoSuchKey(awserr.New(s3.ErrCodeNoSuchKey, "", nil)))
	assert.False(t, isNoSuchKey(awserr.New("SlowDown", "", nil)))
	assert.False(t, isNoSuchKey(errors.New("NotFound")))
	assert.False(t, isNoSuchKey(nil))
}
