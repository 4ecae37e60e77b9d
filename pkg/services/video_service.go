package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/apperr"
	"vidshare/pkg/database"
	"vidshare/pkg/media"
	"vidshare/pkg/models"
)

const (
	videoFolder  = "videos"
	topTagsLimit = 10
)

type VideoInput struct {
	Title       string
	Description string
	Tags        []string
}

// ChannelRef is the channel summary joined into video and comment listings.
type ChannelRef struct {
	ID            primitive.ObjectID `json:"_id"`
	ChannelName   string             `json:"channelName"`
	ChannelAvatar string             `json:"channelAvatar"`
}

// VideoWithChannel replaces the channelId reference with the channel summary.
// The outer ChannelID field shadows the embedded one when encoded.
type VideoWithChannel struct {
	models.Video
	ChannelID *ChannelRef `json:"channelId"`
}

type TaggedVideo struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Thumbnail string             `json:"thumbnail"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  string             `json:"duration"`
	Channel   TaggedChannel      `json:"channel"`
	Views     int                `json:"views"`
}

type TaggedChannel struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type VideoService struct {
	videos   VideoRepository
	channels ChannelRepository
	media    MediaClient
	comp     compensator
}

func NewVideoService(videos VideoRepository, channels ChannelRepository, mc MediaClient, journal Journal) *VideoService {
	return &VideoService{
		videos:   videos,
		channels: channels,
		media:    mc,
		comp:     compensator{media: mc, journal: journal},
	}
}

// Upload admits the payload, stores it with its thumbnail, writes the video record
// and links it to the caller's channel. A failed write undoes the earlier steps.
func (s *VideoService) Upload(ctx context.Context, id Identity, up *media.Upload, in VideoInput) (*models.Video, error) {
	if up == nil {
		return nil, apperr.Validation("No Video Uploaded")
	}
	if err := media.VideoPolicy.Check(up.ContentType, up.Size); err != nil {
		return nil, err
	}
	if id.ID.IsZero() {
		return nil, apperr.Unauthenticated("No authorized user")
	}
	if id.ChannelID == nil {
		return nil, apperr.Validation("No channel found")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apperr.Validation("Title and description are required")
	}
	tags := NormalizeTags(in.Tags)

	res, err := s.media.Upload(ctx, up, media.UploadParams{
		ResourceType: media.ResourceVideo,
		Folder:       videoFolder,
		Eager:        []media.Transform{media.ThumbnailTransform},
	})
	if err != nil {
		return nil, apperr.RemoteService(err)
	}

	video := &models.Video{
		Title:        title,
		Description:  description,
		VideoURL:     res.SecureURL,
		ThumbnailURL: res.ThumbnailURL(),
		ChannelID:    *id.ChannelID,
		Uploader:     id.ID,
		Duration:     strconv.FormatFloat(res.Duration, 'f', -1, 64),
		Tags:         tags,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		s.discardAssets(ctx, "video.upload", video)
		return nil, apperr.Persistence("Unable to save the video", err)
	}

	if err := s.channels.PushVideo(ctx, video.ChannelID, video.ID); err != nil {
		// A record that survives keeps its assets, so the journal names a usable pair.
		if derr := s.videos.Delete(ctx, video.ID); derr != nil {
			s.comp.record("video.upload", "video_record", video.ID.Hex(), derr)
		} else {
			s.discardAssets(ctx, "video.upload", video)
		}
		return nil, apperr.Persistence("Unable to attach the video to its channel", err)
	}
	return video, nil
}

// Delete removes the stored assets, detaches the video from its channel and removes
// the record, in that order. Remote failures stop before the database is touched.
func (s *VideoService) Delete(ctx context.Context, id Identity, videoID primitive.ObjectID) error {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return lookupErr(err, "Video not found", "Unable to delete the video")
	}
	if !id.Owns(video.Uploader) {
		return apperr.Authorization("Not authorized to delete this video")
	}

	if pid := media.PublicIDFromURL(video.VideoURL); pid != "" {
		if err := s.media.Destroy(ctx, pid, media.ResourceVideo); err != nil {
			return apperr.RemoteService(err)
		}
	}
	if pid := media.PublicIDFromURL(video.ThumbnailURL); pid != "" {
		if err := s.media.Destroy(ctx, pid, media.ResourceImage); err != nil {
			return apperr.RemoteService(err)
		}
	}

	detached := false
	if !video.ChannelID.IsZero() {
		err := s.channels.PullVideo(ctx, video.ChannelID, video.ID)
		switch {
		case err == nil:
			detached = true
		case errors.Is(err, database.ErrNotFound):
			// channel is already gone
		default:
			return apperr.Persistence("Unable to delete the video", err)
		}
	}

	if err := s.videos.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if detached {
			if perr := s.channels.PushVideo(ctx, video.ChannelID, video.ID); perr != nil {
				s.comp.record("video.delete", "channel", video.ChannelID.Hex(), perr)
			}
		}
		return apperr.Persistence("Unable to delete the video", err)
	}
	return nil
}

func (s *VideoService) Edit(ctx context.Context, id Identity, videoID primitive.ObjectID, patch models.VideoPatch) (*models.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, lookupErr(err, "Video not found", "Unable to update the video")
	}
	if !id.Owns(video.Uploader) {
		return nil, apperr.Authorization("Not authorized to edit this video")
	}

	if patch.Title == nil && patch.Description == nil && patch.Tags == nil {
		return nil, apperr.Validation("Nothing to update")
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, apperr.Validation("Title cannot be empty")
		}
		patch.Title = &t
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		if d == "" {
			return nil, apperr.Validation("Description cannot be empty")
		}
		patch.Description = &d
	}
	if patch.Tags != nil {
		patch.Tags = NormalizeTags(patch.Tags)
	}

	updated, err := s.videos.Update(ctx, videoID, patch)
	if err != nil {
		return nil, lookupErr(err, "Video not found", "Unable to update the video")
	}
	return updated, nil
}

func (s *VideoService) Get(ctx context.Context, videoID primitive.ObjectID) (*models.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, lookupErr(err, "Unable to find the video", "Unable to fetch video")
	}
	return video, nil
}

// List returns all videos newest first, each with its channel summary.
func (s *VideoService) List(ctx context.Context) ([]VideoWithChannel, error) {
	videos, err := s.videos.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("unable to fetch videos", err)
	}
	refs, err := s.channelRefs(ctx, videos)
	if err != nil {
		return nil, apperr.Persistence("unable to fetch videos", err)
	}

	out := make([]VideoWithChannel, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoWithChannel{Video: v, ChannelID: refs[v.ChannelID]})
	}
	return out, nil
}

// AddView records the caller as a viewer. The count only grows for new viewers.
func (s *VideoService) AddView(ctx context.Context, id Identity, videoID primitive.ObjectID) (*models.Video, error) {
	video, err := s.videos.AddView(ctx, videoID, id.ID)
	if err != nil {
		return nil, lookupErr(err, "Video not found", "Unable to add the view")
	}
	return video, nil
}

func (s *VideoService) React(ctx context.Context, id Identity, videoID primitive.ObjectID, like bool) (*models.Video, error) {
	video, err := s.videos.React(ctx, videoID, id.ID, like)
	if err != nil {
		return nil, lookupErr(err, "Video not found", "Unable to update the reaction")
	}
	return video, nil
}

func (s *VideoService) TopTags(ctx context.Context) ([]string, error) {
	counts, err := s.videos.TopTags(ctx, topTagsLimit)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch top tags", err)
	}
	tags := make([]string, 0, len(counts))
	for _, c := range counts {
		tags = append(tags, c.Tag)
	}
	return tags, nil
}

func (s *VideoService) ByTag(ctx context.Context, tag string) ([]TaggedVideo, error) {
	videos, err := s.videos.FindByTag(ctx, tag)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch videos by tag", err)
	}
	refs, err := s.channelRefs(ctx, videos)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch videos by tag", err)
	}

	out := make([]TaggedVideo, 0, len(videos))
	for _, v := range videos {
		item := TaggedVideo{
			ID:        v.ID,
			Title:     v.Title,
			Thumbnail: v.ThumbnailURL,
			Timestamp: v.CreatedAt,
			Duration:  v.Duration,
			Views:     v.ViewCount(),
		}
		if ref := refs[v.ChannelID]; ref != nil {
			item.Channel = TaggedChannel{Name: ref.ChannelName, Avatar: ref.ChannelAvatar}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *VideoService) channelRefs(ctx context.Context, videos []models.Video) (map[primitive.ObjectID]*ChannelRef, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, v := range videos {
		if !v.ChannelID.IsZero() && !seen[v.ChannelID] {
			seen[v.ChannelID] = true
			ids = append(ids, v.ChannelID)
		}
	}
	channels, err := s.channels.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make(map[primitive.ObjectID]*ChannelRef, len(channels))
	for _, c := range channels {
		refs[c.ID] = &ChannelRef{ID: c.ID, ChannelName: c.ChannelName, ChannelAvatar: c.ChannelAvatar}
	}
	return refs, nil
}

func (s *VideoService) discardAssets(ctx context.Context, op string, v *models.Video) {
	s.comp.destroyAsset(ctx, op, v.VideoURL, media.ResourceVideo)
	s.comp.destroyAsset(ctx, op, v.ThumbnailURL, media.ResourceImage)
}
