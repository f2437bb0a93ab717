package stores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/utils"
)

// UploadDir is the default upload directory for local storage
var UploadDir = "./uploads"

// MediaPrefix is the public URL prefix for locally stored files
var MediaPrefix = "/uploads"

// LocalStore represents local file system storage
type LocalStore struct {
	Root       string
	Prefix     string
	NewDirPerm os.FileMode
}

// NewLocalStore reads UPLOAD_DIR and MEDIA_PREFIX
func NewLocalStore() Store {
	uploadDir := utils.GetEnv(constants.ENV_UPLOAD_DIR)
	if uploadDir == "" {
		uploadDir = UploadDir
	}
	prefix := utils.GetEnv(constants.ENV_MEDIA_PREFIX)
	if prefix == "" {
		prefix = MediaPrefix
	}
	return &LocalStore{Root: uploadDir, Prefix: prefix, NewDirPerm: 0755}
}

// resolve maps key to a file under Root, rejecting escapes
func (l *LocalStore) resolve(key string) (string, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	fname := filepath.Clean(filepath.Join(root, key))
	if fname != root && !strings.HasPrefix(fname, root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return fname, nil
}

func (l *LocalStore) Read(_ context.Context, key string) (io.ReadCloser, int64, error) {
	fname, err := l.resolve(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(fname)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// Write writes to a temp file first and renames it into place
func (l *LocalStore) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	fname, err := l.resolve(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fname)
	if err := os.MkdirAll(dir, l.NewDirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fname)
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	fname, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fname); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	fname, err := l.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err = os.Stat(fname); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL always uses forward slashes
func (l *LocalStore) PublicURL(key string) string {
	prefix := strings.TrimSuffix(l.Prefix, "/")
	return path.Join("/", prefix, strings.TrimPrefix(key, "/"))
}
