package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrExists is returned by Create when the username is taken.
var ErrExists = errors.New("admin already exists")

// Repository defines persistence operations for admins. GetByUsername returns
// models.ErrNotFound when no admin matches.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Create(ctx context.Context, username, passwordHash string) (*models.Admin, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	List(ctx context.Context) ([]*models.Admin, error)
}

// SQLRepository implements Repository on the admins table.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	q := r.db.Dialect.Rebind("SELECT id, username, password, created_at FROM admins WHERE username = ?")
	var (
		a       models.Admin
		created database.Time
	)
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	a.CreatedAt = created.Time
	return &a, nil
}

func (r *SQLRepository) Create(ctx context.Context, username, passwordHash string) (*models.Admin, error) {
	if _, err := r.GetByUsername(ctx, username); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	q := r.db.Dialect.Rebind("INSERT INTO admins (username, password, created_at) VALUES (?, ?, ?) RETURNING id")
	a := &models.Admin{Username: username, PasswordHash: passwordHash, CreatedAt: now}
	if err := r.db.QueryRowContext(ctx, q, username, passwordHash, now).Scan(&a.ID); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	q := r.db.Dialect.Rebind("UPDATE admins SET password = ? WHERE username = ?")
	res, err := r.db.ExecContext(ctx, q, passwordHash, username)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Admin, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, password, created_at FROM admins ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	out := []*models.Admin{}
	for rows.Next() {
		var (
			a       models.Admin
			created database.Time
		)
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &created); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		a.CreatedAt = created.Time
		out = append(out, &a)
	}
	return out, rows.Err()
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	col := db.Collection("admins")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("admin indexes: %w", err)
	}
	return &MongoRepository{col: col, counters: db.Collection("counters")}, nil
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

func (r *MongoRepository) Create(ctx context.Context, username, passwordHash string) (*models.Admin, error) {
	var seq struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.counters.FindOneAndUpdate(ctx, bson.M{"_id": "admins"}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&seq); err != nil {
		return nil, fmt.Errorf("next admin id: %w", err)
	}
	a := &models.Admin{ID: seq.Seq, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": bson.M{"passwordHash": passwordHash}})
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Admin, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer cur.Close(ctx)
	out := []*models.Admin{}
	for cur.Next(ctx) {
		var a models.Admin
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

// MemoryRepository is used by tests and DATABASE_DRIVER=memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*models.Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]*models.Admin)}
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *MemoryRepository) Create(_ context.Context, username, passwordHash string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[username]; ok {
		return nil, ErrExists
	}
	r.nextID++
	a := &models.Admin{ID: r.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.byName[username] = a
	c := *a
	return &c, nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byName[username]
	if !ok {
		return models.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Admin, 0, len(r.byName))
	for _, a := range r.byName {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// normalizeUsername trims surrounding whitespace; usernames are case sensitive.
func normalizeUsername(u string) string { return strings.TrimSpace(u) }
