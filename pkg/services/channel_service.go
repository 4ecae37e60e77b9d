package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/apperr"
	"vidshare/pkg/database"
	"vidshare/pkg/media"
	"vidshare/pkg/models"
)

const (
	avatarFolder = "channel_avatar"
	bannerFolder = "channel_banner"
)

type ChannelInput struct {
	Name        string
	Description string
	Avatar      *media.Upload
	Banner      *media.Upload
}

type ChannelService struct {
	channels ChannelRepository
	users    UserRepository
	media    MediaClient
	comp     compensator
}

func NewChannelService(channels ChannelRepository, users UserRepository, mc MediaClient, journal Journal) *ChannelService {
	return &ChannelService{
		channels: channels,
		users:    users,
		media:    mc,
		comp:     compensator{media: mc, journal: journal},
	}
}

// Create opens the caller's channel. Images are uploaded first; the channel record and
// the owner link follow, and a failure in either removes what was already written.
func (s *ChannelService) Create(ctx context.Context, id Identity, in ChannelInput) (*models.Channel, error) {
	if id.ID.IsZero() {
		return nil, apperr.Unauthenticated("No authorized user")
	}
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || description == "" {
		return nil, apperr.Validation("Channel name and description are required")
	}
	if id.ChannelID != nil {
		return nil, apperr.Validation("User already has a channel")
	}
	for _, img := range []*media.Upload{in.Avatar, in.Banner} {
		if img == nil {
			continue
		}
		if err := media.ImagePolicy.Check(img.ContentType, img.Size); err != nil {
			return nil, err
		}
	}

	_, err := s.channels.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, apperr.Validation("Channel name already exists")
	case !errors.Is(err, database.ErrNotFound):
		return nil, apperr.Persistence("Unable to create the channel", err)
	}

	channel := &models.Channel{
		ChannelName: name,
		Owner:       id.ID,
		Description: description,
	}
	if in.Avatar != nil {
		url, err := s.uploadImage(ctx, in.Avatar, avatarFolder)
		if err != nil {
			return nil, err
		}
		channel.ChannelAvatar = url
	}
	if in.Banner != nil {
		url, err := s.uploadImage(ctx, in.Banner, bannerFolder)
		if err != nil {
			s.discardImages(ctx, channel)
			return nil, err
		}
		channel.ChannelBanner = url
	}

	if err := s.channels.Create(ctx, channel); err != nil {
		s.discardImages(ctx, channel)
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Validation("Channel name already exists")
		}
		return nil, apperr.Persistence("Unable to create the channel", err)
	}

	if err := s.users.AttachChannel(ctx, id.ID, channel.ID); err != nil {
		if derr := s.channels.Delete(ctx, channel.ID); derr != nil {
			s.comp.record("channel.create", "channel", channel.ID.Hex(), derr)
		}
		s.discardImages(ctx, channel)
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Validation("User already has a channel")
		}
		return nil, apperr.Persistence("Unable to link the channel to its owner", err)
	}
	return channel, nil
}

func (s *ChannelService) Get(ctx context.Context, channelID primitive.ObjectID) (*models.Channel, error) {
	channel, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, lookupErr(err, "Channel not found", "Unable to fetch the channel")
	}
	return channel, nil
}

// Current returns the caller's own channel.
func (s *ChannelService) Current(ctx context.Context, id Identity) (*models.Channel, error) {
	if id.ChannelID == nil {
		return nil, apperr.NotFound("No channel found")
	}
	channel, err := s.channels.FindByID(ctx, *id.ChannelID)
	if err != nil {
		return nil, lookupErr(err, "No channel found", "Unable to fetch the channel")
	}
	return channel, nil
}

func (s *ChannelService) uploadImage(ctx context.Context, up *media.Upload, folder string) (string, error) {
	res, err := s.media.Upload(ctx, up, media.UploadParams{
		ResourceType: media.ResourceImage,
		Folder:       folder,
	})
	if err != nil {
		return "", apperr.RemoteService(err)
	}
	return res.SecureURL, nil
}

func (s *ChannelService) discardImages(ctx context.Context, c *models.Channel) {
	s.comp.destroyAsset(ctx, "channel.create", c.ChannelAvatar, media.ResourceImage)
	s.comp.destroyAsset(ctx, "channel.create", c.ChannelBanner, media.ResourceImage)
}
