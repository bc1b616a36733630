// Package testutil provides mocks, fakes, and fixtures shared by the
// bucketsync test suites. It is internal and must only be imported from
// tests.
package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/perigee-io/bucketsync/synctypes"
)

// MockS3API is a func-field mock of the AWS S3 operations the s3 driver
// calls. Unset fields return empty outputs and no error.
type MockS3API struct {
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObjectFunc    func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObjectFunc     func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObjectFunc     func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjectFunc  func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucketFunc  func(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// ListObjectsV2 mocks the S3 ListObjectsV2 operation.
func (m *MockS3API) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

// HeadObject mocks the S3 HeadObject operation.
func (m *MockS3API) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	if m.HeadObjectFunc != nil {
		return m.HeadObjectFunc(ctx, params, optFns...)
	}
	return &s3.HeadObjectOutput{}, nil
}

// GetObject mocks the S3 GetObject operation.
func (m *MockS3API) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3API) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// DeleteObject mocks the S3 DeleteObject operation.
func (m *MockS3API) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, params, optFns...)
	}
	return &s3.DeleteObjectOutput{}, nil
}

// CreateBucket mocks the S3 CreateBucket operation.
func (m *MockS3API) CreateBucket(
	ctx context.Context,
	params *s3.CreateBucketInput,
	optFns ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx, params, optFns...)
	}
	return &s3.CreateBucketOutput{}, nil
}

// MockObjectStore is a func-field mock of synctypes.ObjectStore for
// error-injection tests. Set the fields your test exercises; unset fields
// report empty results and no error.
type MockObjectStore struct {
	ListObjectsFunc  func(ctx context.Context, path string) ([]synctypes.RemoteObject, error)
	GetObjectFunc    func(ctx context.Context, path string) (synctypes.RemoteObject, error)
	UploadObjectFunc func(ctx context.Context, localPath, remotePath string, extra map[string]string) (synctypes.RemoteObject, error)
	DeleteObjectFunc func(ctx context.Context, obj synctypes.RemoteObject) error
	CreateBucketFunc func(ctx context.Context, name string) error
}

// ListObjects mocks the listing operation.
func (m *MockObjectStore) ListObjects(ctx context.Context, path string) ([]synctypes.RemoteObject, error) {
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, path)
	}
	return nil, nil
}

// GetObject mocks the single-object lookup.
func (m *MockObjectStore) GetObject(ctx context.Context, path string) (synctypes.RemoteObject, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, path)
	}
	return nil, nil
}

// UploadObject mocks the upload operation.
func (m *MockObjectStore) UploadObject(
	ctx context.Context,
	localPath, remotePath string,
	extra map[string]string,
) (synctypes.RemoteObject, error) {
	if m.UploadObjectFunc != nil {
		return m.UploadObjectFunc(ctx, localPath, remotePath, extra)
	}
	return nil, nil
}

// DeleteObject mocks the delete operation.
func (m *MockObjectStore) DeleteObject(ctx context.Context, obj synctypes.RemoteObject) error {
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, obj)
	}
	return nil
}

// CreateBucket mocks the bucket creation operation.
func (m *MockObjectStore) CreateBucket(ctx context.Context, name string) error {
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx, name)
	}
	return nil
}
