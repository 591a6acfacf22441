package models

import "time"

// Admin is the single administrator role allowed to mutate articles.
// PasswordHash holds a bcrypt hash; it is never serialized.
type Admin struct {
	ID           int64     `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
