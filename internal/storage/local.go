package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 本地磁盘存储，文件由 API 进程通过 /uploads 静态路径对外提供
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储，baseURL 是站点对外地址
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("无法创建上传目录 %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put 写入文件并返回公开 URL
func (s *LocalStore) Put(_ context.Context, obj *Object) (string, error) {
	path := filepath.Join(s.dir, obj.Name)
	if err := os.WriteFile(path, obj.Data, 0o644); err != nil {
		return "", &StorageError{Op: "local.write", Err: err}
	}
	return s.baseURL + "/uploads/" + obj.Name, nil
}
