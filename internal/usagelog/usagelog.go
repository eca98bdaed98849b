// Package usagelog records successful advisory calls for observability.
package usagelog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// Logger appends usage rows.
type Logger interface {
	Record(ctx context.Context, entry model.AIUsageLog) error
}

// GormLogger writes to the ai_usage_logs table.
type GormLogger struct {
	DB *gorm.DB
}

// NewGormLogger returns a Logger backed by db.
func NewGormLogger(db *gorm.DB) *GormLogger {
	return &GormLogger{DB: db}
}

// Record implements Logger.
func (l *GormLogger) Record(ctx context.Context, entry model.AIUsageLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return l.DB.WithContext(ctx).Create(&entry).Error
}

// CollectionName is the Mongo collection usage rows go to.
const CollectionName = "ai_usage_logs"

type usageDocument struct {
	UserID         string    `bson:"user_id"`
	RequestType    string    `bson:"request_type"`
	ResponseLength int       `bson:"response_length"`
	CreatedAt      time.Time `bson:"created_at"`
}

// MongoLogger writes to a Mongo collection.
type MongoLogger struct {
	col *mongo.Collection
}

// NewMongoLogger returns a Logger writing to db.ai_usage_logs.
func NewMongoLogger(db *mongo.Database) *MongoLogger {
	return &MongoLogger{col: db.Collection(CollectionName)}
}

// Record implements Logger.
func (l *MongoLogger) Record(ctx context.Context, entry model.AIUsageLog) error {
	doc := usageDocument{
		UserID:         entry.UserID.String(),
		RequestType:    entry.RequestType,
		ResponseLength: entry.ResponseLength,
		CreatedAt:      entry.CreatedAt.UTC(),
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := l.col.InsertOne(ctx, doc)
	return err
}
