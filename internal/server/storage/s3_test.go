package storage

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	pages   []*s3.ListObjectsV2Output
	calls   int
	listErr error
	deleted []string
	delErr  error
}

func (f *fakeObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func realPresigner(t *testing.T) *s3.PresignClient {
	t.Helper()
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", ""),
		BaseEndpoint: aws.String("http://127.0.0.1:9000"),
		UsePathStyle: true,
	})
	return s3.NewPresignClient(client)
}

func TestNewS3Storage_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{Region: lo.Region}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	st, err := NewS3Storage(context.Background(), &sc.Config{
		S3Region: "us-east-1", S3RootUser: "u", S3RootPassword: "p",
		S3BaseEndpoint: "http://127.0.0.1:9000", S3Bucket: "docvault",
	})
	require.NoError(t, err)
	assert.Equal(t, "docvault", st.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Storage(context.Background(), &sc.Config{})
	assert.ErrorContains(t, err, "load-fail")
}

func TestPresign_GetAndPut(t *testing.T) {
	st := newS3Storage(&fakeObjects{}, realPresigner(t), "docvault")

	getURL, err := st.PresignGet(context.Background(), "users/u1/7/front-a", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(getURL)
	require.NoError(t, err)
	assert.Equal(t, "/docvault/users/u1/7/front-a", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))

	putURL, err := st.PresignPut(context.Background(), "users/u1/7/back-b", "image/jpeg", 15*time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(putURL)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestPrefixSize_SumsAllPages(t *testing.T) {
	objs := &fakeObjects{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Size: aws.Int64(100)}, {Size: aws.Int64(50)}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("t1"),
		},
		{
			Contents: []types.Object{{Size: aws.Int64(25)}, {}},
		},
	}}
	st := newS3Storage(objs, realPresigner(t), "docvault")

	total, err := st.PrefixSize(context.Background(), UserPrefix("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(175), total)
	assert.Equal(t, 2, objs.calls)
}

func TestPrefixSize_Error(t *testing.T) {
	st := newS3Storage(&fakeObjects{listErr: errors.New("no bucket")}, realPresigner(t), "docvault")
	_, err := st.PrefixSize(context.Background(), "users/u1/")
	assert.ErrorContains(t, err, "no bucket")
}

func TestDelete(t *testing.T) {
	objs := &fakeObjects{}
	st := newS3Storage(objs, realPresigner(t), "docvault")

	require.NoError(t, st.Delete(context.Background(), "users/u1/7/front-a"))
	assert.Equal(t, []string{"users/u1/7/front-a"}, objs.deleted)

	objs.delErr = errors.New("denied")
	assert.ErrorContains(t, st.Delete(context.Background(), "k"), "denied")
}

func TestKeys(t *testing.T) {
	key := MediaKey("u1", 42, "front")
	assert.Regexp(t, regexp.MustCompile(`^users/u1/42/front-[0-9a-f-]{36}$`), key)
	assert.True(t, OwnedBy("u1", key))
	assert.False(t, OwnedBy("u2", key))
	assert.False(t, OwnedBy("u1", "users/u1/../u2/x"))
	assert.False(t, OwnedBy("", "users//x"))
}
