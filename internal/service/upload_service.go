package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"worsebox/internal/data"

	"github.com/minio/minio-go/v7"
)

// BlobStore 上传文件的不透明存储
// Save 返回公共引用路径 (/uploads/xxx)，Open 按对象名取回文件流
type BlobStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, int64, string, error)
}

// 只收图片。老系统什么后缀都收，这里收紧成白名单
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type minioBlobStore struct {
	client *minio.Client
	bucket string
}

func NewBlobStore(d *data.Data) BlobStore {
	return &minioBlobStore{client: d.Minio, bucket: d.Bucket}
}

// checkExt 后缀白名单校验
func checkExt(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return ErrFileType
	}
	return nil
}

// objectName 生成存储文件名：毫秒时间戳 + 原始后缀
// 时间戳粒度内并发上传会撞名，概率极低，沿用老系统的命名方案
func objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + ext
}

func (s *minioBlobStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := checkExt(fh.Filename); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := objectName(fh.Filename)

	// 同步写完再返回，Handler 后续步骤拿到的引用一定已经落盘
	_, err = s.client.PutObject(ctx, s.bucket, name, src, fh.Size, minio.PutObjectOptions{
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("MinIO 上传失败: %v", err)
	}

	return "/uploads/" + name, nil
}

func (s *minioBlobStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, "", err
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, "", err
	}

	return obj, stat.Size, stat.ContentType, nil
}
