package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// MaxAttachmentSize is the upload ceiling (5 MiB).
const MaxAttachmentSize int64 = 5 << 20

// URLPrefix is the public path under which stored attachments are served.
const URLPrefix = "/uploads/"

// AllowedMIMETypes lists the content types accepted as attachments.
var AllowedMIMETypes = []string{"application/pdf", "image/jpeg", "image/png", "image/gif"}

var (
	ErrTooLarge        = models.NewValidationError("File too large. Maximum size is 5MB.")
	ErrUnsupportedType = models.NewValidationError("Only PDF and image files are allowed!")
)

// Store persists attachment bytes and serves them back by generated name.
type Store interface {
	// Accept validates and stores an uploaded file and returns its reference.
	Accept(ctx context.Context, fh *multipart.FileHeader) (*models.Attachment, error)
	// Remove deletes the file behind a reference path; a missing file is not an error.
	Remove(ctx context.Context, refPath string) error
	// Open streams a stored file by name. models.ErrNotFound when absent.
	Open(ctx context.Context, name string) (io.ReadCloser, Info, error)
}

// Info describes a stored object.
type Info struct {
	Size        int64
	ContentType string
}

// inspect enforces the size ceiling and sniffs the content type against the allow-list.
func inspect(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", models.NewValidationError("No file uploaded.")
	}
	if fh.Size > MaxAttachmentSize {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect mime type: %w", err)
	}
	for _, allowed := range AllowedMIMETypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedType
}

// generateName returns attachment-<unix millis>-<random hex><ext>, keeping the
// original extension.
func generateName(original string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random name: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("attachment-%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(b), ext), nil
}

// nameFromRef reduces a reference path (or bare name) to a safe object name.
func nameFromRef(ref string) (string, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), URLPrefix)
	name := path.Base(filepath.ToSlash(ref))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", false
	}
	return name, true
}
