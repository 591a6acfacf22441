package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/collegenews/collegenews/backend/go-services/internal/storage/storagetest"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestDiskStore_AcceptOpenRemove(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	att, err := s.Accept(ctx, storagetest.FileHeader(t, "Schedule.PDF", storagetest.PDF))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", att.MIMEType)
	require.True(t, strings.HasPrefix(att.Path, "/uploads/attachment-"))
	require.True(t, strings.HasSuffix(att.Path, ".pdf"), "extension preserved (lower-cased): %s", att.Path)

	rc, info, err := s.Open(ctx, strings.TrimPrefix(att.Path, URLPrefix))
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.True(t, bytes.Equal(storagetest.PDF, got))
	require.Equal(t, int64(len(storagetest.PDF)), info.Size)
	require.Equal(t, "application/pdf", info.ContentType)

	require.NoError(t, s.Remove(ctx, att.Path))
	_, _, err = s.Open(ctx, strings.TrimPrefix(att.Path, URLPrefix))
	require.ErrorIs(t, err, models.ErrNotFound)

	// removing again is not an error
	require.NoError(t, s.Remove(ctx, att.Path))
}

func TestDiskStore_AcceptImages(t *testing.T) {
	s := newDiskStore(t)
	png, err := s.Accept(context.Background(), storagetest.FileHeader(t, "logo.png", storagetest.PNG))
	require.NoError(t, err)
	require.Equal(t, "image/png", png.MIMEType)

	gif, err := s.Accept(context.Background(), storagetest.FileHeader(t, "anim.gif", storagetest.GIF))
	require.NoError(t, err)
	require.Equal(t, "image/gif", gif.MIMEType)
	require.NotEqual(t, png.Path, gif.Path)
}

func TestDiskStore_RejectsDisallowedType(t *testing.T) {
	s := newDiskStore(t)
	_, err := s.Accept(context.Background(), storagetest.FileHeader(t, "notes.pdf", storagetest.Text))
	require.ErrorIs(t, err, models.ErrValidation)
	require.Equal(t, ErrUnsupportedType, err)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Empty(t, entries, "rejected uploads must not be written")
}

func TestDiskStore_RejectsOversize(t *testing.T) {
	s := newDiskStore(t)
	big := append([]byte{}, storagetest.PDF...)
	big = append(big, bytes.Repeat([]byte("0"), int(MaxAttachmentSize))...)
	_, err := s.Accept(context.Background(), storagetest.FileHeader(t, "big.pdf", big))
	require.ErrorIs(t, err, models.ErrValidation)
	require.Equal(t, ErrTooLarge, err)
}

func TestDiskStore_OpenRejectsTraversal(t *testing.T) {
	s := newDiskStore(t)
	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))

	_, _, err := s.Open(context.Background(), "../secret.txt")
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, s.Remove(context.Background(), "/uploads/../secret.txt"))
	_, err = os.Stat(outside)
	require.NoError(t, err, "file outside the uploads dir must survive")
}

func TestGenerateName(t *testing.T) {
	a, err := generateName("Report Final.JPG")
	require.NoError(t, err)
	b, err := generateName("Report Final.JPG")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, strings.HasSuffix(a, ".jpg"))

	c, err := generateName("noext")
	require.NoError(t, err)
	require.Equal(t, "", filepath.Ext(c))
}
