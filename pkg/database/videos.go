package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidshare/pkg/models"
)

type VideoRepository struct {
	coll *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{coll: db.Collection(VideosCollection)}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	now := time.Now().UTC()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.Views == nil {
		video.Views = []primitive.ObjectID{}
	}
	if video.Likes == nil {
		video.Likes = []primitive.ObjectID{}
	}
	if video.Dislikes == nil {
		video.Dislikes = []primitive.ObjectID{}
	}
	if video.Tags == nil {
		video.Tags = []string{}
	}
	_, err := r.coll.InsertOne(ctx, video)
	return err
}

func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, notFound(err)
	}
	return &video, nil
}

// List returns every video, newest first.
func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// FindByTag matches videos whose tag list holds exactly tag.
func (r *VideoRepository) FindByTag(ctx context.Context, tag string) ([]models.Video, error) {
	return r.find(ctx, bson.M{"tags": tag})
}

func (r *VideoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.VideoPatch) (*models.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddView adds userID to the view set. Adding a user that is already there
// leaves the set unchanged.
func (r *VideoRepository) AddView(ctx context.Context, id, userID primitive.ObjectID) (*models.Video, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$addToSet": bson.M{"views": userID}})
}

// React moves userID into the likes or dislikes set and out of the other one.
func (r *VideoRepository) React(ctx context.Context, id, userID primitive.ObjectID, like bool) (*models.Video, error) {
	add, remove := "likes", "dislikes"
	if !like {
		add, remove = remove, add
	}
	return r.findAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{add: userID},
		"$pull":     bson.M{remove: userID},
	})
}

// TopTags counts tag occurrences across all videos and returns the most frequent ones.
func (r *VideoRepository) TopTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	cur, err := r.coll.Aggregate(ctx, topTagsPipeline(limit))
	if err != nil {
		return nil, err
	}
	tags := []models.TagCount{}
	if err := cur.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func topTagsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "tag", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

func (r *VideoRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Video, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	videos := []models.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *VideoRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Video, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var video models.Video
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&video); err != nil {
		return nil, notFound(err)
	}
	return &video, nil
}
