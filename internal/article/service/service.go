package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/collegenews/collegenews/backend/go-services/internal/article/repository"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/collegenews/collegenews/backend/go-services/internal/storage"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/collegenews/collegenews/backend/go-services/pkg/metrics"
)

var ErrNotFound = models.ErrNotFound

// Input is one article write as received from a client.
type Input struct {
	Title    string
	Content  string
	Author   string
	Category string
	// File is the uploaded attachment, nil when none was sent.
	File *multipart.FileHeader
	// KeepAttachment only matters on update without a new file.
	KeepAttachment bool
}

func (in Input) fields() (models.ArticleFields, error) {
	cat, err := models.ParseCategory(in.Category)
	if err != nil {
		return models.ArticleFields{}, err
	}
	f := models.ArticleFields{Title: in.Title, Content: in.Content, Author: in.Author, Category: cat}.Normalize()
	return f, f.Validate()
}

// Service defines the article operations used by the handler layer.
type Service interface {
	List(ctx context.Context, f repository.Filter, s repository.Sort) ([]*models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, in Input) (*models.Article, error)
	Update(ctx context.Context, id int64, in Input) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
}

// New returns a Service that keeps the article rows and the attachment store
// consistent.
func New(repo repository.Repository, store storage.Store) Service {
	return &articleService{repo: repo, store: store}
}

type articleService struct {
	repo  repository.Repository
	store storage.Store
}

func (s *articleService) List(ctx context.Context, f repository.Filter, sort repository.Sort) ([]*models.Article, error) {
	return s.repo.List(ctx, f, sort)
}

func (s *articleService) Get(ctx context.Context, id int64) (*models.Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *articleService) Create(ctx context.Context, in Input) (*models.Article, error) {
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	att, err := s.accept(ctx, in.File)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Create(ctx, f, att)
	if err != nil {
		s.discard(ctx, att)
		return nil, err
	}
	metrics.ArticleMutations.WithLabelValues("create").Inc()
	return a, nil
}

// Update replaces the article's fields. A new file replaces the previous
// attachment; without one the attachment survives only when KeepAttachment
// is set. The previous file is removed only after the row write succeeds.
func (s *articleService) Update(ctx context.Context, id int64, in Input) (*models.Article, error) {
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	uploaded, err := s.accept(ctx, in.File)
	if err != nil {
		return nil, err
	}

	next := uploaded
	if uploaded == nil && in.KeepAttachment {
		next = current.Attachment
	}

	a, err := s.repo.Update(ctx, id, f, next)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	metrics.ArticleMutations.WithLabelValues("update").Inc()

	if old := current.Attachment; old != nil && (next == nil || next.Path != old.Path) {
		s.discard(ctx, old)
	}
	return a, nil
}

func (s *articleService) Delete(ctx context.Context, id int64) error {
	att, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	metrics.ArticleMutations.WithLabelValues("delete").Inc()
	s.discard(ctx, att)
	return nil
}

func (s *articleService) accept(ctx context.Context, fh *multipart.FileHeader) (*models.Attachment, error) {
	if fh == nil {
		return nil, nil
	}
	att, err := s.store.Accept(ctx, fh)
	switch {
	case err == nil:
		metrics.AttachmentOps.WithLabelValues("accept", "ok").Inc()
	case errors.Is(err, models.ErrValidation):
		metrics.AttachmentOps.WithLabelValues("accept", "rejected").Inc()
	default:
		metrics.AttachmentOps.WithLabelValues("accept", "error").Inc()
	}
	return att, err
}

// discard removes a stored file; failures are logged and never surface.
func (s *articleService) discard(ctx context.Context, att *models.Attachment) {
	if att == nil {
		return
	}
	if err := s.store.Remove(ctx, att.Path); err != nil {
		metrics.AttachmentOps.WithLabelValues("remove", "error").Inc()
		logger.Warnf("article: failed to remove attachment %s: %v", att.Path, err)
		return
	}
	metrics.AttachmentOps.WithLabelValues("remove", "ok").Inc()
}

// ParseKeepFlag reads the keepAttachment form value. Absent or empty is false.
func ParseKeepFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0", "no", "off":
		return false, nil
	case "true", "1", "yes", "on":
		return true, nil
	}
	return false, models.NewValidationError("keepAttachment must be true or false.")
}
