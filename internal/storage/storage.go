// Package storage 负责海报文件的校验与落盘。
// 上传内容先整体读入内存并通过类型/大小校验，之后才允许触达任何后端，
// 数据库写入永远发生在存储成功之后。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

// MaxPosterSize 海报大小上限 5 MiB
const MaxPosterSize = 5 << 20

// 客户端输入错误，在任何存储调用之前拒绝
var (
	ErrPosterTooLarge = errors.New("海报文件超过 5MB 限制")
	ErrPosterType     = errors.New("海报仅支持 jpeg/jpg/png/gif 格式")
)

// 扩展名白名单及对应的 Content-Type
var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// StorageError 存储后端故障（网络、权限、配额等），与输入错误区分开
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储失败(%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Object 待写入后端的上传对象
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// AssetStore 海报存储接口，Put 返回对外可访问的完整 URL
type AssetStore interface {
	Put(ctx context.Context, obj *Object) (string, error)
}

// ReadPoster 读取并校验 multipart 海报文件。
// 扩展名与 MIME 类型都必须命中白名单，超限或类型不符立即拒绝。
func ReadPoster(fh *multipart.FileHeader) (*Object, error) {
	if fh.Size > MaxPosterSize {
		return nil, ErrPosterTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := allowedExt[ext]
	if !ok {
		return nil, ErrPosterType
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" && !allowedMime[declared] {
		return nil, ErrPosterType
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Size 来自客户端声明，实际读取仍然限长
	data, err := io.ReadAll(io.LimitReader(f, MaxPosterSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPosterSize {
		return nil, ErrPosterTooLarge
	}

	return &Object{
		Name:        NewObjectName(ext),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// NewObjectName 生成防碰撞的对象名：poster-<毫秒时间戳>-<随机数><扩展名>
func NewObjectName(ext string) string {
	return fmt.Sprintf("poster-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
