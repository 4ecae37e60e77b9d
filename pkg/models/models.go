package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Email            string              `bson:"email" json:"email"`
	Username         string              `bson:"username" json:"username"`
	Password         string              `bson:"password" json:"-"`
	IsChannelCreated bool                `bson:"isChannelCreated" json:"isChannelCreated"`
	Channel          *primitive.ObjectID `bson:"channel,omitempty" json:"channel"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type Channel struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ChannelName   string               `bson:"channelName" json:"channelName"`
	Owner         primitive.ObjectID   `bson:"owner" json:"owner"`
	Description   string               `bson:"description" json:"description"`
	ChannelAvatar string               `bson:"channelAvatar" json:"channelAvatar"`
	ChannelBanner string               `bson:"channelBanner" json:"channelBanner"`
	Subscribers   int                  `bson:"subscribers" json:"subscribers"`
	Videos        []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Video struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	VideoURL     string               `bson:"videoUrl" json:"videoUrl"`
	ThumbnailURL string               `bson:"thumbnailUrl" json:"thumbnailUrl"`
	ChannelID    primitive.ObjectID   `bson:"channelId" json:"channelId"`
	Uploader     primitive.ObjectID   `bson:"uploader" json:"uploader"`
	Views        []primitive.ObjectID `bson:"views" json:"views"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes     []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	// Duration is whatever the media service reported, kept as text.
	Duration  string    `bson:"duration" json:"duration"`
	Tags      []string  `bson:"tags" json:"tags"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ViewCount is the number of distinct users that watched the video.
func (v *Video) ViewCount() int {
	return len(v.Views)
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	VideoID   primitive.ObjectID `bson:"videoId" json:"videoId"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TagCount is one row of the tag frequency aggregation.
type TagCount struct {
	Tag   string `bson:"tag" json:"tag"`
	Count int    `bson:"count" json:"count"`
}

// VideoPatch lists the editable fields of a video. Nil means unchanged.
type VideoPatch struct {
	Title       *string
	Description *string
	Tags        []string
}
