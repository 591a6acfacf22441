package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
)

// MemoryRepo is an in-memory repository used by unit tests and
// DATABASE_DRIVER=memory. A single mutex serializes writes.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*models.Article
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*models.Article), now: func() time.Time { return time.Now().UTC() }}
}

func clone(a *models.Article) *models.Article {
	c := *a
	c.Attachment = copyAttachment(a.Attachment)
	return &c
}

func (m *MemoryRepo) List(_ context.Context, f Filter, s Sort) ([]*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)
	out := make([]*models.Article, 0, len(m.store))
	for _, a := range m.store {
		if category != "" && string(a.Category) != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Content), needle) &&
			!strings.Contains(strings.ToLower(a.Author), needle) {
			continue
		}
		out = append(out, clone(a))
	}
	s = s.normalized()
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], s.Field)
		if c == 0 {
			c = compareInt(out[i].ID, out[j].ID)
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func compare(a, b *models.Article, field string) int {
	switch field {
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "author":
		return strings.Compare(a.Author, b.Author)
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m *MemoryRepo) Get(_ context.Context, id int64) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.store[id]; ok {
		return clone(a), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Create(_ context.Context, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := m.now()
	a := &models.Article{
		ID:         m.nextID,
		Title:      f.Title,
		Content:    f.Content,
		Author:     f.Author,
		Category:   f.Category,
		Attachment: copyAttachment(att),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.store[a.ID] = a
	return clone(a), nil
}

func (m *MemoryRepo) Update(_ context.Context, id int64, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Title, a.Content, a.Author, a.Category = f.Title, f.Content, f.Author, f.Category
	a.Attachment = copyAttachment(att)
	if now := m.now(); now.After(a.UpdatedAt) {
		a.UpdatedAt = now
	}
	return clone(a), nil
}

func (m *MemoryRepo) Delete(_ context.Context, id int64) (*models.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.store, id)
	return copyAttachment(a.Attachment), nil
}
