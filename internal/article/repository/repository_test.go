package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) tick()          { c.t = c.t.Add(time.Second) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryRepoContract(t *testing.T) {
	runContract(t, func(t *testing.T, c *clock) Repository {
		r := NewMemoryRepo()
		r.now = c.now
		return r
	})
}

func TestSQLiteRepoContract(t *testing.T) {
	runContract(t, func(t *testing.T, c *clock) Repository {
		ctx := context.Background()
		db, err := database.OpenSQL(ctx, "sqlite", filepath.Join(t.TempDir(), "articles.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		require.NoError(t, db.Migrate(ctx))
		r := NewSQLRepo(db)
		r.now = c.now
		return r
	})
}

func runContract(t *testing.T, open func(t *testing.T, c *clock) Repository) {
	t.Run("CreateGetDefaults", func(t *testing.T) {
		c := newClock()
		r := open(t, c)
		ctx := context.Background()

		a, err := r.Create(ctx, models.ArticleFields{Title: " Fest ", Content: "Annual fest", Author: "Dean"}, nil)
		require.NoError(t, err)
		require.Equal(t, int64(1), a.ID)
		require.Equal(t, "Fest", a.Title)
		require.Equal(t, models.CategoryEvents, a.Category)
		require.Nil(t, a.Attachment)
		require.True(t, a.CreatedAt.Equal(a.UpdatedAt))

		got, err := r.Get(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.Title, got.Title)
		require.True(t, c.t.Equal(got.CreatedAt))

		_, err = r.Get(ctx, 999)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateRejectsMissingFields", func(t *testing.T) {
		r := open(t, newClock())
		ctx := context.Background()
		_, err := r.Create(ctx, models.ArticleFields{Title: "", Content: "x", Author: "y"}, nil)
		require.ErrorIs(t, err, models.ErrValidation)

		list, err := r.List(ctx, Filter{}, DefaultSort)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("ListFiltersAndOrder", func(t *testing.T) {
		c := newClock()
		r := open(t, c)
		ctx := context.Background()

		seed := []models.ArticleFields{
			{Title: "Quantum lab opens", Content: "New research wing", Author: "Dr. Rao", Category: models.CategoryResearch},
			{Title: "Hackathon winners", Content: "Team QUANTUM took first", Author: "Staff", Category: models.CategoryAchievements},
			{Title: "Spring fair", Content: "Food and music", Author: "Quinn", Category: models.CategoryEvents},
			{Title: "100% attendance", Content: "Record turnout", Author: "Staff", Category: models.CategoryEvents},
		}
		for _, f := range seed {
			_, err := r.Create(ctx, f, nil)
			require.NoError(t, err)
			c.tick()
		}

		all, err := r.List(ctx, Filter{}, DefaultSort)
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.Equal(t, []int64{4, 3, 2, 1}, ids(all))

		asc, err := r.List(ctx, Filter{}, ParseSort("title", "asc"))
		require.NoError(t, err)
		require.Equal(t, "100% attendance", asc[0].Title)

		hits, err := r.List(ctx, Filter{Search: "quantum"}, DefaultSort)
		require.NoError(t, err)
		require.Equal(t, []int64{2, 1}, ids(hits))

		both, err := r.List(ctx, Filter{Search: "quantum", Category: "research"}, DefaultSort)
		require.NoError(t, err)
		require.Equal(t, []int64{1}, ids(both))

		events, err := r.List(ctx, Filter{Category: "events"}, DefaultSort)
		require.NoError(t, err)
		require.Equal(t, []int64{4, 3}, ids(events))

		literal, err := r.List(ctx, Filter{Search: "100%"}, DefaultSort)
		require.NoError(t, err)
		require.Equal(t, []int64{4}, ids(literal))

		none, err := r.List(ctx, Filter{Search: "_"}, DefaultSort)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("UpdateReplacesFieldsAndAttachment", func(t *testing.T) {
		c := newClock()
		r := open(t, c)
		ctx := context.Background()

		att := &models.Attachment{Path: "/uploads/attachment-1.pdf", MIMEType: "application/pdf"}
		a, err := r.Create(ctx, models.ArticleFields{Title: "t", Content: "c", Author: "a"}, att)
		require.NoError(t, err)
		require.Equal(t, att, a.Attachment)
		created := a.CreatedAt

		c.tick()
		up, err := r.Update(ctx, a.ID, models.ArticleFields{Title: "t2", Content: "c2", Author: "a2", Category: models.CategoryResearch}, att)
		require.NoError(t, err)
		require.Equal(t, "t2", up.Title)
		require.Equal(t, models.CategoryResearch, up.Category)
		require.Equal(t, att, up.Attachment)
		require.True(t, created.Equal(up.CreatedAt))
		require.True(t, up.UpdatedAt.After(up.CreatedAt))

		c.tick()
		cleared, err := r.Update(ctx, a.ID, models.ArticleFields{Title: "t3", Content: "c3", Author: "a3"}, nil)
		require.NoError(t, err)
		require.Nil(t, cleared.Attachment)
		require.Equal(t, models.CategoryEvents, cleared.Category)

		_, err = r.Update(ctx, 42, models.ArticleFields{Title: "t", Content: "c", Author: "a"}, nil)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = r.Update(ctx, a.ID, models.ArticleFields{Title: "t", Content: " ", Author: "a"}, nil)
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("DeleteReturnsAttachmentOnce", func(t *testing.T) {
		r := open(t, newClock())
		ctx := context.Background()

		att := &models.Attachment{Path: "/uploads/attachment-2.png", MIMEType: "image/png"}
		a, err := r.Create(ctx, models.ArticleFields{Title: "t", Content: "c", Author: "a"}, att)
		require.NoError(t, err)
		plain, err := r.Create(ctx, models.ArticleFields{Title: "p", Content: "c", Author: "a"}, nil)
		require.NoError(t, err)

		gone, err := r.Delete(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, att, gone)

		_, err = r.Delete(ctx, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = r.Get(ctx, a.ID)
		require.ErrorIs(t, err, ErrNotFound)

		gone, err = r.Delete(ctx, plain.ID)
		require.NoError(t, err)
		require.Nil(t, gone)
	})
}

func ids(list []*models.Article) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestParseSort(t *testing.T) {
	require.Equal(t, DefaultSort, ParseSort("", ""))
	require.Equal(t, Sort{Field: "title", Desc: false}, ParseSort("Title", "ASC"))
	require.Equal(t, Sort{Field: "created_at", Desc: true}, ParseSort("password", "desc"))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `a\_b\\c`, escapeLike(`a_b\c`))
}
