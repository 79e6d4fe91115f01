package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCSStore Google Cloud Storage 存储，对象写入后设为公开可读
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore 创建 GCS 存储，凭证走默认的应用凭证链
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("无法创建 GCS 客户端: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put 上传对象、放开读权限并返回公开 URL
func (s *GCSStore) Put(ctx context.Context, obj *Object) (string, error) {
	o := s.client.Bucket(s.bucket).Object(obj.Name)

	w := o.NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := w.Write(obj.Data); err != nil {
		w.Close()
		return "", &StorageError{Op: "gcs.write", Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &StorageError{Op: "gcs.close", Err: err}
	}

	if err := o.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", &StorageError{Op: "gcs.acl", Err: err}
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, obj.Name), nil
}

// Close 释放底层客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
