package database

import (
	"github.com/OleksandrShchur/FindIFBot/internal/database/models"
)

// PostLogger defines the interface for logging published posts.
type PostLogger interface {
	// LogPublishedPost logs information about a post published to the channel.
	LogPublishedPost(log models.PostLog) error
}

// UserActionLogger defines the interface for logging user actions.
type UserActionLogger interface {
	// LogUserAction logs an action performed by a user.
	LogUserAction(userID int64, action string, details interface{}) error
}
