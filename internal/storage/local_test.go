package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:5000/")
	if err != nil {
		t.Fatalf("NewLocalStore 失败: %v", err)
	}

	obj := &Object{Name: "poster-1-2.png", ContentType: "image/png", Data: []byte("img")}
	url, err := store.Put(context.Background(), obj)
	if err != nil {
		t.Fatalf("Put 失败: %v", err)
	}

	// 末尾斜杠应被归一，URL 指向静态路径
	if url != "http://localhost:5000/uploads/poster-1-2.png" {
		t.Errorf("URL 不符: %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, obj.Name))
	if err != nil {
		t.Fatalf("文件未写入: %v", err)
	}
	if string(data) != "img" {
		t.Errorf("文件内容不符: %q", data)
	}
}

func TestLocalStorePutStorageError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewLocalStore 失败: %v", err)
	}

	// 目录被移除后写入必然失败，应包装为 StorageError
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("移除目录失败: %v", err)
	}

	_, err = store.Put(context.Background(), &Object{Name: "p.png", Data: []byte("x")})
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("应返回 StorageError，实际: %v", err)
	}
}
