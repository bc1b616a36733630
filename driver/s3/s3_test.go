package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/internal/testutil"
	"github.com/perigee-io/bucketsync/synctypes"
)

func newTestStore(mock *testutil.MockS3API) *Store {
	cfg := synctypes.StorageConfig{
		Provider: synctypes.ProviderS3,
		Bucket:   "test-bucket",
		Region:   "eu-central-1",
	}
	return NewWithAPI(mock, cfg, zerolog.Nop())
}

func TestStore_ListObjects_Pagination(t *testing.T) {
	var tokens []string
	mock := &testutil.MockS3API{
		ListObjectsV2Func: func(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "test-bucket", aws.ToString(input.Bucket))
			assert.Equal(t, "base/", aws.ToString(input.Prefix))
			tokens = append(tokens, aws.ToString(input.ContinuationToken))

			if input.ContinuationToken == nil {
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("base/a.txt"), Size: aws.Int64(1), ETag: aws.String(`"aa"`)},
						{Key: aws.String("base/b.txt"), Size: aws.Int64(2), ETag: aws.String(`"bb"`)},
					},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("page-2"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("base/c.txt"), Size: aws.Int64(3), ETag: aws.String(`"cc"`)},
				},
			}, nil
		},
	}

	objects, err := newTestStore(mock).ListObjects(context.Background(), "base/")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, []string{"", "page-2"}, tokens)
	assert.Equal(t, "base/c.txt", objects[2].Name())
	assert.Equal(t, int64(3), objects[2].Size())
	assert.Equal(t, "cc", objects[2].Hash())
	assert.Equal(t, synctypes.ProviderS3, objects[0].Provider())
}

func TestStore_ListObjects_Error(t *testing.T) {
	mock := &testutil.MockS3API{
		ListObjectsV2Func: func(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, &types.NoSuchBucket{}
		},
	}

	_, err := newTestStore(mock).ListObjects(context.Background(), "base/")
	require.Error(t, err)
	assert.ErrorIs(t, err, bserrors.ErrBucketNotFound)
}

func TestStore_GetObject(t *testing.T) {
	mock := &testutil.MockS3API{
		HeadObjectFunc: func(_ context.Context, input *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			assert.Equal(t, "base/file.txt", aws.ToString(input.Key))
			return &s3.HeadObjectOutput{
				ContentLength: aws.Int64(42),
				ETag:          aws.String(`"deadbeef"`),
				Metadata:      map[string]string{"Sha256": "abc123"},
			}, nil
		},
	}

	obj, err := newTestStore(mock).GetObject(context.Background(), "base/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "base/file.txt", obj.Name())
	assert.Equal(t, int64(42), obj.Size())
	assert.Equal(t, "deadbeef", obj.Hash())
	assert.Equal(t, "abc123", obj.Metadata()["sha256"])
}

func TestStore_GetObject_NotFound(t *testing.T) {
	mock := &testutil.MockS3API{
		HeadObjectFunc: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, &types.NotFound{}
		},
	}

	_, err := newTestStore(mock).GetObject(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
}

func TestStore_UploadObject(t *testing.T) {
	local := testutil.WriteLocalFile(t, t.TempDir(), "upload.txt", "hello upload")

	mock := &testutil.MockS3API{
		PutObjectFunc: func(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "test-bucket", aws.ToString(input.Bucket))
			assert.Equal(t, "dest/upload.txt", aws.ToString(input.Key))
			assert.Equal(t, int64(len("hello upload")), aws.ToInt64(input.ContentLength))
			assert.True(t, strings.HasPrefix(aws.ToString(input.ContentType), "text/plain"))
			assert.Equal(t, "abc", input.Metadata["trace"])

			body, err := io.ReadAll(input.Body)
			require.NoError(t, err)
			assert.Equal(t, "hello upload", string(body))

			return &s3.PutObjectOutput{ETag: aws.String(`"e1"`)}, nil
		},
	}

	obj, err := newTestStore(mock).UploadObject(
		context.Background(), local, "dest/upload.txt", map[string]string{"trace": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "dest/upload.txt", obj.Name())
	assert.Equal(t, int64(len("hello upload")), obj.Size())
	assert.Equal(t, "e1", obj.Hash())
}

func TestStore_UploadObject_MissingFile(t *testing.T) {
	called := false
	mock := &testutil.MockS3API{
		PutObjectFunc: func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			called = true
			return &s3.PutObjectOutput{}, nil
		},
	}

	_, err := newTestStore(mock).UploadObject(context.Background(), "/does/not/exist", "dest", nil)
	require.Error(t, err)
	assert.True(t, bserrors.IsNotFound(err))
	assert.False(t, called, "missing local files must fail before any backend call")
}

func TestStore_UploadObject_InvalidRemotePath(t *testing.T) {
	_, err := newTestStore(&testutil.MockS3API{}).UploadObject(
		context.Background(), "ignored", "../escape", nil)
	require.Error(t, err)
	assert.True(t, bserrors.IsInvalidInput(err))
}

func TestStore_DeleteObject(t *testing.T) {
	var deletedKey string
	mock := &testutil.MockS3API{
		DeleteObjectFunc: func(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			deletedKey = aws.ToString(input.Key)
			return &s3.DeleteObjectOutput{}, nil
		},
	}

	store := newTestStore(mock)
	obj := &object{store: store, key: "base/old.txt"}
	require.NoError(t, store.DeleteObject(context.Background(), obj))
	assert.Equal(t, "base/old.txt", deletedKey)
}

func TestStore_CreateBucket(t *testing.T) {
	tests := []struct {
		name       string
		bucket     string
		region     string
		apiErr     error
		wantErr    error
		wantCalled bool
		wantRegion bool
	}{
		{
			name:       "regional bucket carries location constraint",
			bucket:     "fresh-bucket",
			region:     "eu-central-1",
			wantCalled: true,
			wantRegion: true,
		},
		{
			name:       "us-east-1 omits location constraint",
			bucket:     "fresh-bucket",
			region:     "us-east-1",
			wantCalled: true,
		},
		{
			name:    "invalid name fails before the backend call",
			bucket:  "AB",
			region:  "eu-central-1",
			wantErr: bserrors.ErrInvalidBucketName,
		},
		{
			name:       "already owned maps to already exists",
			bucket:     "taken-bucket",
			region:     "eu-central-1",
			apiErr:     &types.BucketAlreadyOwnedByYou{},
			wantErr:    bserrors.ErrBucketAlreadyExists,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &testutil.MockS3API{
				CreateBucketFunc: func(_ context.Context, input *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
					called = true
					assert.Equal(t, tt.bucket, aws.ToString(input.Bucket))
					if tt.wantRegion {
						require.NotNil(t, input.CreateBucketConfiguration)
						assert.Equal(t, types.BucketLocationConstraint(tt.region),
							input.CreateBucketConfiguration.LocationConstraint)
					} else {
						assert.Nil(t, input.CreateBucketConfiguration)
					}
					return &s3.CreateBucketOutput{}, tt.apiErr
				},
			}

			cfg := synctypes.StorageConfig{Provider: synctypes.ProviderS3, Bucket: "test-bucket", Region: tt.region}
			err := NewWithAPI(mock, cfg, zerolog.Nop()).CreateBucket(context.Background(), tt.bucket)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &types.NoSuchKey{}, bserrors.ErrObjectNotFound},
		{"not found", &types.NotFound{}, bserrors.ErrObjectNotFound},
		{"no such bucket", &types.NoSuchBucket{}, bserrors.ErrBucketNotFound},
		{"bucket owned by you", &types.BucketAlreadyOwnedByYou{}, bserrors.ErrBucketAlreadyExists},
		{"bucket already exists", &types.BucketAlreadyExists{}, bserrors.ErrBucketAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}
}
