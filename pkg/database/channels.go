package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vidshare/pkg/models"
)

type ChannelRepository struct {
	coll *mongo.Collection
}

func NewChannelRepository(db *mongo.Database) *ChannelRepository {
	return &ChannelRepository{coll: db.Collection(ChannelsCollection)}
}

func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	now := time.Now().UTC()
	channel.ID = primitive.NewObjectID()
	channel.CreatedAt = now
	channel.UpdatedAt = now
	if channel.Videos == nil {
		channel.Videos = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, channel)
	return insertErr(err)
}

func (r *ChannelRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Channel, error) {
	var channel models.Channel
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&channel); err != nil {
		return nil, notFound(err)
	}
	return &channel, nil
}

func (r *ChannelRepository) FindByName(ctx context.Context, name string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.coll.FindOne(ctx, bson.M{"channelName": name}).Decode(&channel); err != nil {
		return nil, notFound(err)
	}
	return &channel, nil
}

func (r *ChannelRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Channel, error) {
	channels := []models.Channel{}
	if len(ids) == 0 {
		return channels, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *ChannelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushVideo appends a video id to the channel's ordered list.
func (r *ChannelRepository) PushVideo(ctx context.Context, channelID, videoID primitive.ObjectID) error {
	return r.updateVideos(ctx, channelID, bson.M{"$push": bson.M{"videos": videoID}})
}

// PullVideo removes every occurrence of the video id from the channel's list.
func (r *ChannelRepository) PullVideo(ctx context.Context, channelID, videoID primitive.ObjectID) error {
	return r.updateVideos(ctx, channelID, bson.M{"$pull": bson.M{"videos": videoID}})
}

func (r *ChannelRepository) updateVideos(ctx context.Context, channelID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": channelID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
