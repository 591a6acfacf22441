package repository

import (
	"context"
	"strings"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
)

// ErrNotFound is returned when an article id does not exist.
var ErrNotFound = models.ErrNotFound

// Filter narrows List. Search matches title, content or author
// case-insensitively; Category must match exactly. Empty fields are ignored.
type Filter struct {
	Search   string
	Category string
}

// Sort orders List results.
type Sort struct {
	Field string // created_at | updated_at | title | author
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: "created_at", Desc: true}

var sortFields = map[string]bool{"created_at": true, "updated_at": true, "title": true, "author": true}

// ParseSort maps query-string values onto a Sort. Unknown fields fall back
// to created_at; the direction defaults to descending.
func ParseSort(field, order string) Sort {
	s := DefaultSort
	f := strings.ToLower(strings.TrimSpace(field))
	if sortFields[f] {
		s.Field = f
	}
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		s.Desc = false
	}
	return s
}

func (s Sort) normalized() Sort {
	if !sortFields[s.Field] {
		s.Field = DefaultSort.Field
	}
	return s
}

// Repository owns the articles table.
type Repository interface {
	List(ctx context.Context, f Filter, s Sort) ([]*models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, f models.ArticleFields, att *models.Attachment) (*models.Article, error)
	// Update replaces the content fields and the attachment reference (nil clears it).
	Update(ctx context.Context, id int64, f models.ArticleFields, att *models.Attachment) (*models.Article, error)
	// Delete removes the row and returns the attachment it referenced, if any.
	Delete(ctx context.Context, id int64) (*models.Attachment, error)
}

func prepare(f models.ArticleFields) (models.ArticleFields, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func copyAttachment(att *models.Attachment) *models.Attachment {
	if att == nil || att.Path == "" {
		return nil
	}
	c := *att
	return &c
}
