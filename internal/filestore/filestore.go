// 包 filestore：上传文件的保存、删除与访问地址
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store：文件存储契约
// Save 返回存储路径（相对路径，写入数据库）；Delete 对不存在的文件不报错；URL 返回可直接访问的地址。
type Store interface {
	Save(ctx context.Context, r io.Reader, suggestedName string) (string, error)
	Delete(ctx context.Context, storedPath string) error
	URL(storedPath string) string
}

var ErrBadPath = errors.New("filestore: invalid path")

// storedName：由建议文件名生成唯一存储路径，保留目录与小写扩展名
// 例：posts/2026/10/16/IMG_01.JPG -> posts/2026/10/16/<uuid>.jpg
func storedName(suggested string) (string, error) {
	suggested = strings.ReplaceAll(suggested, "\\", "/")
	dir, file := path.Split(suggested)
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if err := checkPath(dir); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(path.Ext(file))
	if dir == "" {
		return name, nil
	}
	return dir + "/" + name, nil
}

// checkPath：拒绝绝对路径与上跳路径
func checkPath(p string) error {
	if strings.HasPrefix(p, "/") {
		return ErrBadPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return ErrBadPath
		}
	}
	return nil
}

// Ext：小写扩展名（不含点）
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}
