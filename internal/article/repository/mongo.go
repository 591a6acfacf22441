package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores articles in MongoDB. Documents carry an integer "id"
// allocated from the counters collection so ids stay sequential like the
// relational backends.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewMongoRepo(ctx context.Context, db *mongo.Database) (*MongoRepo, error) {
	col := db.Collection("articles")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("article indexes: %w", err)
	}
	return &MongoRepo{
		col:      col,
		counters: db.Collection("counters"),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

var mongoSortKeys = map[string]string{
	"created_at": "createdAt",
	"updated_at": "updatedAt",
	"title":      "title",
	"author":     "author",
}

func nextSequence(ctx context.Context, counters *mongo.Collection, name string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return out.Seq, nil
}

func (m *MongoRepo) List(ctx context.Context, f Filter, s Sort) ([]*models.Article, error) {
	filter := bson.M{}
	if search := strings.TrimSpace(f.Search); search != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"content": rx}, bson.M{"author": rx}}
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		filter["category"] = category
	}
	s = s.normalized()
	dir := 1
	if s.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: mongoSortKeys[s.Field], Value: dir}, {Key: "id", Value: dir}})

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer cur.Close(ctx)
	out := []*models.Article{}
	for cur.Next(ctx) {
		var a models.Article
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode article: %w", err)
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Get(ctx context.Context, id int64) (*models.Article, error) {
	var a models.Article
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return &a, nil
}

func (m *MongoRepo) Create(ctx context.Context, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	id, err := nextSequence(ctx, m.counters, "articles")
	if err != nil {
		return nil, err
	}
	now := m.now()
	a := &models.Article{
		ID:         id,
		Title:      f.Title,
		Content:    f.Content,
		Author:     f.Author,
		Category:   f.Category,
		Attachment: copyAttachment(att),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := m.col.InsertOne(ctx, a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (m *MongoRepo) Update(ctx context.Context, id int64, f models.ArticleFields, att *models.Attachment) (*models.Article, error) {
	f, err := prepare(f)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"title":     f.Title,
		"content":   f.Content,
		"author":    f.Author,
		"category":  f.Category,
		"updatedAt": m.now(),
	}
	update := bson.M{"$set": set}
	if att = copyAttachment(att); att != nil {
		set["attachment"] = att
	} else {
		update["$unset"] = bson.M{"attachment": ""}
	}

	var a models.Article
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	return &a, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id int64) (*models.Attachment, error) {
	var a models.Article
	if err := m.col.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete article %d: %w", id, err)
	}
	return copyAttachment(a.Attachment), nil
}
