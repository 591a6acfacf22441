package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
)

const articleColumns = "id, title, content, author, category, attachment_url, attachment_type, created_at, updated_at"

// SQLRepo stores articles in the relational articles table (SQLite or PostgreSQL).
type SQLRepo struct {
	db  *database.DB
	now func() time.Time
}

func NewSQLRepo(db *database.DB) *SQLRepo {
	return &SQLRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a        models.Article
		category string
		url, typ sql.NullString
	)
	created, updated := database.Time{}, database.Time{}
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &category, &url, &typ, &created, &updated); err != nil {
		return nil, err
	}
	a.CreatedAt, a.UpdatedAt = created.Time, updated.Time
	a.Category = models.Category(category)
	if url.Valid && typ.Valid {
		a.Attachment = &models.Attachment{Path: url.String, MIMEType: typ.String}
	}
	return &a, nil
}

func attachmentArgs(att *models.Attachment) (sql.NullString, sql.NullString) {
	att = copyAttachment(att)
	if att == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: att.Path, Valid: true}, sql.NullString{String: att.MIMEType, Valid: true}
}

// escapeLike makes LIKE metacharacters in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *SQLRepo) List(ctx context.Context, f Filter, s Sort) ([]*models.Article, error) {
	var (
		where []string
		args  []interface{}
	)
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}

	q := "SELECT " + articleColumns + " FROM articles"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	s = s.normalized()
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	// s.Field is whitelisted by normalized
	q += fmt.Sprintf(" ORDER BY %s %s, id %s", s.Field, dir, dir)

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	out := []*models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return out, nil
}

func (r *SQLRepo) Get(ctx context.Context, id int64) (*models.Article, error) {
	q := r.db.Dialect.Rebind("SELECT " + articleColumns + " FROM articles WHERE id = ?")
	a, err := scanArticle(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLRepo) Create(ctx context.Context, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	now := r.now()
	url, typ := attachmentArgs(att)
	q := r.db.Dialect.Rebind(`INSERT INTO articles (title, content, author, category, attachment_url, attachment_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING ` + articleColumns)
	a, err := scanArticle(r.db.QueryRowContext(ctx, q, f.Title, f.Content, f.Author, string(f.Category), url, typ, now, now))
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (r *SQLRepo) Update(ctx context.Context, id int64, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	url, typ := attachmentArgs(att)
	q := r.db.Dialect.Rebind(`UPDATE articles
		SET title = ?, content = ?, author = ?, category = ?, attachment_url = ?, attachment_type = ?, updated_at = ?
		WHERE id = ? RETURNING ` + articleColumns)
	a, err := scanArticle(r.db.QueryRowContext(ctx, q, f.Title, f.Content, f.Author, string(f.Category), url, typ, r.now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLRepo) Delete(ctx context.Context, id int64) (*models.Attachment, error) {
	q := r.db.Dialect.Rebind("DELETE FROM articles WHERE id = ? RETURNING attachment_url, attachment_type")
	var url, typ sql.NullString
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&url, &typ); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete article %d: %w", id, err)
	}
	if !url.Valid {
		return nil, nil
	}
	return &models.Attachment{Path: url.String, MIMEType: typ.String}, nil
}
