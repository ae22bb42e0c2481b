// Package local keeps uploaded item images on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"

	"github.com/mohdashiqtp/procurement-app/pkg/config"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
)

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store writes images under dir and exposes them below publicPrefix.
type Store struct {
	dir          string
	publicPrefix string
	maxFiles     int
	maxBytes     int64
	now          func() time.Time
}

// New creates the upload directory if needed.
func New(cfg config.UploadsConfig) (*Store, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	prefix := cfg.PublicPath
	if prefix == "" {
		prefix = "/uploads"
	}
	return &Store{
		dir:          cfg.Dir,
		publicPrefix: strings.TrimSuffix(prefix, "/"),
		maxFiles:     cfg.MaxFiles,
		maxBytes:     cfg.MaxFileBytes(),
		now:          time.Now,
	}, nil
}

// Dir is the directory served as static files.
func (s *Store) Dir() string { return s.dir }

// PublicPrefix is the URL path the directory is mounted at.
func (s *Store) PublicPrefix() string { return s.publicPrefix }

// URL maps a stored file name to its public path.
func (s *Store) URL(name string) string {
	return path.Join(s.publicPrefix, name)
}

// SaveImages validates and writes every file, returning the stored names in
// input order. Nothing is left on disk when any file fails.
func (s *Store) SaveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no images uploaded")
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d images per upload", s.maxFiles)
	}

	saved := make([]string, 0, len(files))
	for i, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, multierr.Append(err, s.Remove(ctx, saved...))
		}
		name, err := s.saveOne(fh, i)
		if err != nil {
			return nil, multierr.Append(err, s.Remove(context.Background(), saved...))
		}
		saved = append(saved, name)
	}
	return saved, nil
}

func (s *Store) saveOne(fh *multipart.FileHeader, index int) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "image %q exceeds %d MB", fh.Filename, s.maxBytes>>20).
			WithDetails(map[string]any{"index": index, "file": fh.Filename})
	}

	src, err := fh.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open upload")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detect upload type")
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "file %q is not an image", fh.Filename).
			WithDetails(map[string]any{"index": index, "file": fh.Filename, "detected": mtype.String()})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rewind upload")
	}

	name := s.fileName(fh.Filename, mtype.Extension(), index)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create image file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write image file")
	}
	if err := dst.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close image file")
	}
	return name, nil
}

// fileName is <unix millis>-<index>-<sanitized base><ext>.
func (s *Store) fileName(original, ext string, index int) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeNameRe.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%d-%s%s", s.now().UnixMilli(), index, base, ext)
}

// Remove deletes stored files by name. Missing files are ignored; other
// failures are combined.
func (s *Store) Remove(_ context.Context, names ...string) error {
	var errs error
	for _, name := range names {
		clean := filepath.Base(name)
		if clean == "." || clean == "/" || clean == "" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
