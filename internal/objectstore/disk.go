// Package objectstore реализует хранилище файлов товаров.
// Дисковая реализация кладёт объекты в локальный каталог и отдаёт
// публичные URL относительно базового адреса — этого достаточно,
// когда картинки раздаёт тот же сервер или nginx перед ним.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/norafoods/storefront/internal/domain"
)

// DiskStorage хранит объекты в файловой системе под baseDir.
type DiskStorage struct {
	baseDir string
	baseURL string
}

// NewDiskStorage создаёт дисковое хранилище. baseURL используется как префикс
// публичных ссылок, например "/static" или "https://cdn.norafoods.example".
func NewDiskStorage(baseDir, baseURL string) (*DiskStorage, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("object storage dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create object storage dir: %w", err)
	}
	return &DiskStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload записывает объект по относительному пути. Путь не должен выходить
// за пределы baseDir.
func (s *DiskStorage) Upload(ctx context.Context, path string, data io.Reader) error {
	cleaned, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(cleaned), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close object: %w", err)
	}

	// Rename атомарен в пределах каталога: читатели не видят полузаписанный файл.
	if err := os.Rename(tmpName, cleaned); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish object: %w", err)
	}
	return nil
}

// PublicURL возвращает публичную ссылку на объект.
func (s *DiskStorage) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

func (s *DiskStorage) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("object path is required")
	}
	cleaned := filepath.Join(s.baseDir, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.baseDir, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path %q escapes storage dir", path)
	}
	return cleaned, nil
}

var _ domain.ObjectStorage = (*DiskStorage)(nil)
