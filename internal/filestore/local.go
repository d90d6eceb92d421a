package filestore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// Local：本地磁盘存储，文件经 Handler 以 baseURL 前缀对外提供
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{root: root, baseURL: baseURL}, nil
}

func (l *Local) Save(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	rel, err := storedName(suggestedName)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	metrics.UploadBytes.Observe(float64(n))
	logger.L().Debug("file_saved", "path", rel, "bytes", n)
	return rel, nil
}

func (l *Local) Delete(ctx context.Context, storedPath string) error {
	if storedPath == "" {
		return nil
	}
	if err := checkPath(storedPath); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(storedPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) URL(storedPath string) string {
	if storedPath == "" {
		return ""
	}
	return l.baseURL + storedPath
}

// Handler：静态文件处理器，挂载到 baseURL
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(l.baseURL, http.FileServer(http.Dir(l.root)))
}
