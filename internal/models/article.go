package models

import (
	"strings"
	"time"
)

// Category classifies an article.
type Category string

const (
	CategoryEvents       Category = "events"
	CategoryAchievements Category = "achievements"
	CategoryResearch     Category = "research"
)

// DefaultCategory is applied when a write omits the category.
const DefaultCategory = CategoryEvents

// Categories lists every accepted category.
var Categories = []Category{CategoryEvents, CategoryAchievements, CategoryResearch}

// ParseCategory maps raw form input to a Category. Empty input yields the default.
func ParseCategory(raw string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return DefaultCategory, nil
	}
	for _, c := range Categories {
		if string(c) == v {
			return c, nil
		}
	}
	return "", NewValidationError("Category must be one of events, achievements, research.")
}

// Attachment references a stored file. Path is the public URL path
// (e.g. /uploads/attachment-...pdf), MIMEType the verified content type.
type Attachment struct {
	Path     string `bson:"path" json:"path"`
	MIMEType string `bson:"mimeType" json:"mimeType"`
}

// Article is one published news item.
type Article struct {
	ID         int64       `bson:"id"`
	Title      string      `bson:"title"`
	Content    string      `bson:"content"`
	Author     string      `bson:"author"`
	Category   Category    `bson:"category"`
	Attachment *Attachment `bson:"attachment,omitempty"`
	CreatedAt  time.Time   `bson:"createdAt"`
	UpdatedAt  time.Time   `bson:"updatedAt"`
}

// ArticleFields are the editable content fields of an article.
type ArticleFields struct {
	Title    string
	Content  string
	Author   string
	Category Category
}

// Normalize trims the text fields and fills the default category.
func (f ArticleFields) Normalize() ArticleFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Author = strings.TrimSpace(f.Author)
	if f.Category == "" {
		f.Category = DefaultCategory
	}
	return f
}

// Validate reports a ValidationError when a required field is empty or the
// category is unknown.
func (f ArticleFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Content) == "" || strings.TrimSpace(f.Author) == "" {
		return NewValidationError("Title, content, and author are required.")
	}
	if f.Category != "" {
		if _, err := ParseCategory(string(f.Category)); err != nil {
			return err
		}
	}
	return nil
}
