package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/apperr"
	"vidshare/pkg/database"
	"vidshare/pkg/media"
	"vidshare/pkg/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	AttachChannel(ctx context.Context, userID, channelID primitive.ObjectID) error
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Channel, error)
	FindByName(ctx context.Context, name string) (*models.Channel, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Channel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushVideo(ctx context.Context, channelID, videoID primitive.ObjectID) error
	PullVideo(ctx context.Context, channelID, videoID primitive.ObjectID) error
}

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	FindByTag(ctx context.Context, tag string) ([]models.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.VideoPatch) (*models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddView(ctx context.Context, id, userID primitive.ObjectID) (*models.Video, error)
	React(ctx context.Context, id, userID primitive.ObjectID, like bool) (*models.Video, error)
	TopTags(ctx context.Context, limit int) ([]models.TagCount, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Comment, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MediaClient is the remote media store: uploads with eager derivatives and
// destroy by public id.
type MediaClient interface {
	Upload(ctx context.Context, up *media.Upload, params media.UploadParams) (*media.UploadResult, error)
	Destroy(ctx context.Context, publicID string, kind media.ResourceType) error
}

type Journal interface {
	Record(entry database.Compensation) error
}

// NopJournal drops every entry.
type NopJournal struct{}

func (NopJournal) Record(database.Compensation) error { return nil }

// lookupErr maps a repository read failure to the API taxonomy.
func lookupErr(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Persistence(failMsg, err)
}
