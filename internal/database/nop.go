package database

import (
	"github.com/OleksandrShchur/FindIFBot/internal/database/models"
)

// NopLogger satisfies the logger interfaces without persisting anything.
// It is used when no MongoDB connection is configured.
type NopLogger struct{}

// NewNopLogger creates a no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// LogPublishedPost discards the entry.
func (n *NopLogger) LogPublishedPost(models.PostLog) error { return nil }

// LogUserAction discards the entry.
func (n *NopLogger) LogUserAction(int64, string, interface{}) error { return nil }
