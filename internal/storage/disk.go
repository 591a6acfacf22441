package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// DiskStore keeps attachments as files in a single content directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the content directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the content directory.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Accept(_ context.Context, fh *multipart.FileHeader) (*models.Attachment, error) {
	mimeType, err := inspect(fh)
	if err != nil {
		return nil, err
	}
	name, err := generateName(fh.Filename)
	if err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	full := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxAttachmentSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxAttachmentSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if errors.Is(err, models.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("write attachment: %w", err)
	}
	return &models.Attachment{Path: URLPrefix + name, MIMEType: mimeType}, nil
}

func (s *DiskStore) Remove(_ context.Context, refPath string) error {
	name, ok := nameFromRef(refPath)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove attachment %s: %w", name, err)
	}
	return nil
}

func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, Info, error) {
	name, ok := nameFromRef(name)
	if !ok {
		return nil, Info{}, models.ErrNotFound
	}
	full := filepath.Join(s.dir, name)
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Info{}, models.ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("open attachment: %w", err)
	}
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		f.Close()
		return nil, Info{}, models.ErrNotFound
	}
	mt, err := mimetype.DetectFile(full)
	if err != nil {
		f.Close()
		return nil, Info{}, fmt.Errorf("detect mime type: %w", err)
	}
	return f, Info{Size: st.Size(), ContentType: mt.String()}, nil
}
