package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/OleksandrShchur/FindIFBot/internal/database/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoLogger implements the logger interfaces using MongoDB.
type MongoLogger struct {
	db *mongo.Database
}

// NewMongoLogger creates a MongoLogger backed by the given database.
func NewMongoLogger(db *mongo.Database) *MongoLogger {
	return &MongoLogger{db: db}
}

// LogUserAction writes a user action log entry to the database.
func (m *MongoLogger) LogUserAction(userID int64, action string, details interface{}) error {
	collection := m.db.Collection("user_actions")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collection.InsertOne(ctx, map[string]interface{}{
		"user_id": userID,
		"action":  action,
		"details": details,
		"time":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert user action log for user %d: %w", userID, err)
	}
	return nil
}

// LogPublishedPost writes a log entry for a post published to the channel.
func (m *MongoLogger) LogPublishedPost(logEntry models.PostLog) error {
	collection := m.db.Collection("post_logs")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collection.InsertOne(ctx, logEntry)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to insert post log into collection '%s': %w", "post_logs", err)
		log.Printf("%v", wrappedErr)
		return wrappedErr
	}
	return nil
}
