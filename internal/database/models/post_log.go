package models

import "time"

// PostLog stores information about a submission published to the channel.
type PostLog struct {
	SenderID             int64     `bson:"sender_id"`
	Caption              string    `bson:"caption,omitempty"`
	PhotoCount           int       `bson:"photo_count"`
	IsAd                 bool      `bson:"is_ad"`
	PublishedAt          time.Time `bson:"published_at"`
	ChannelID            int64     `bson:"channel_id"`
	ChannelPostID        int       `bson:"channel_post_id"`
	OriginalMessageID    int       `bson:"original_message_id,omitempty"`
	OriginalMediaGroupID string    `bson:"original_media_group_id,omitempty"`
}
