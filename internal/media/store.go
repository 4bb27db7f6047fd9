package media

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// URLPrefix is where stored files are served.
	URLPrefix = "/uploads/"

	DefaultMaxSize int64 = 5 * 1024 * 1024
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)
	allowedTypes    = regexp.MustCompile(`jpeg|jpg|png|gif|webp`)
)

// Upload is a file received from a client.
type Upload struct {
	Name        string // original file name
	ContentType string // declared MIME type
	Body        io.Reader
}

// StoredFile describes a file in the managed directory.
type StoredFile struct {
	Path    string // /uploads/<name>
	ModTime time.Time
}

// ImageStore places uploaded product images under a managed directory.
type ImageStore interface {
	Store(ctx context.Context, up Upload) (string, error)
	// Delete is best-effort: failures are logged, never returned.
	Delete(ctx context.Context, relPath string)
	List(ctx context.Context) ([]StoredFile, error)
}

// FileStore is an ImageStore on an afero filesystem.
type FileStore struct {
	fs      afero.Fs
	dir     string
	maxSize int64
	now     func() time.Time
}

var _ ImageStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir on the OS filesystem.
func NewFileStore(dir string, maxSize int64) *FileStore {
	return NewFileStoreFs(afero.NewOsFs(), dir, maxSize)
}

func NewFileStoreFs(fs afero.Fs, dir string, maxSize int64) *FileStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FileStore{fs: fs, dir: dir, maxSize: maxSize, now: time.Now}
}

// SanitizeName replaces every character outside [A-Za-z0-9.-_] with '_'.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

func (s *FileStore) Store(ctx context.Context, up Upload) (string, error) {
	if up.Body == nil {
		return "", domain.ValidationError("media.store", "No file content")
	}
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxSize+1))
	if err != nil {
		return "", domain.StorageError("media.store", errors.Wrap(err, "read upload"))
	}
	if int64(len(data)) > s.maxSize {
		return "", domain.ValidationError("media.store", "File too large")
	}

	ext := strings.ToLower(filepath.Ext(up.Name))
	mimeType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			mimeType = kind.MIME.Value
		}
	}
	if !allowedTypes.MatchString(ext) || !allowedTypes.MatchString(mimeType) {
		return "", domain.ValidationError("media.store", "Only image files are allowed!")
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.StorageError("media.store", errors.Wrap(err, "create upload dir"))
	}

	filename := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + SanitizeName(up.Name)
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", domain.StorageError("media.store", errors.Wrap(err, "write upload"))
	}

	zap.L().Info("image stored",
		zap.String("file", filename),
		zap.Int("size", len(data)),
		zap.String("mime", mimeType))
	return URLPrefix + filename, nil
}

// Delete removes a previously stored file. Only the base name of relPath is used,
// so nothing outside the managed directory can be touched.
func (s *FileStore) Delete(ctx context.Context, relPath string) {
	name := path.Base(strings.TrimPrefix(relPath, URLPrefix))
	if relPath == "" || name == "." || name == "/" || name == ".." {
		return
	}
	full := filepath.Join(s.dir, name)
	if err := s.fs.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return
		}
		zap.L().Warn("failed to delete image",
			zap.String("path", relPath),
			zap.Error(err))
		return
	}
	zap.L().Info("image deleted", zap.String("path", relPath))
}

func (s *FileStore) List(ctx context.Context) ([]StoredFile, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("media.list", errors.Wrap(err, "read upload dir"))
	}
	files := make([]StoredFile, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		files = append(files, StoredFile{Path: URLPrefix + fi.Name(), ModTime: fi.ModTime()})
	}
	return files, nil
}
