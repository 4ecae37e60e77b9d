package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/apperr"
	"vidshare/pkg/models"
)

type CommentAuthor struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
	Channel  *ChannelRef        `json:"channel"`
}

// CommentView is a comment with its author populated.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	VideoID   primitive.ObjectID `json:"videoId"`
	User      *CommentAuthor     `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type CommentService struct {
	comments CommentRepository
	users    UserRepository
	channels ChannelRepository
}

func NewCommentService(comments CommentRepository, users UserRepository, channels ChannelRepository) *CommentService {
	return &CommentService{comments: comments, users: users, channels: channels}
}

func (s *CommentService) Add(ctx context.Context, id Identity, videoID primitive.ObjectID, text string) (*models.Comment, error) {
	if id.ID.IsZero() {
		return nil, apperr.Unauthenticated("No authorized user")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Comment text is required")
	}
	comment := &models.Comment{VideoID: videoID, User: id.ID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Persistence("Unable to add the comment", err)
	}
	return comment, nil
}

// List returns the comments of a video newest first with their authors.
func (s *CommentService) List(ctx context.Context, videoID primitive.ObjectID) ([]CommentView, error) {
	comments, err := s.comments.FindByVideo(ctx, videoID)
	if err != nil {
		return nil, apperr.Persistence("Unable to fetch comments", err)
	}
	authors, err := s.authors(ctx, comments)
	if err != nil {
		return nil, apperr.Persistence("Unable to fetch comments", err)
	}

	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentView{
			ID:        c.ID,
			VideoID:   c.VideoID,
			User:      authors[c.User],
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *CommentService) Edit(ctx context.Context, id Identity, commentID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Comment text is required")
	}
	if err := s.authorize(ctx, id, commentID, "Not authorized to edit this comment"); err != nil {
		return nil, err
	}
	comment, err := s.comments.UpdateText(ctx, commentID, text)
	if err != nil {
		return nil, lookupErr(err, "Comment not found", "Unable to update the comment")
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id Identity, commentID primitive.ObjectID) error {
	if err := s.authorize(ctx, id, commentID, "Not authorized to delete this comment"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return lookupErr(err, "Comment not found", "Unable to delete the comment")
	}
	return nil
}

func (s *CommentService) authorize(ctx context.Context, id Identity, commentID primitive.ObjectID, deniedMsg string) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return lookupErr(err, "Comment not found", "Unable to fetch the comment")
	}
	if !id.Owns(comment.User) {
		return apperr.Authorization(deniedMsg)
	}
	return nil
}

func (s *CommentService) authors(ctx context.Context, comments []models.Comment) (map[primitive.ObjectID]*CommentAuthor, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, c := range comments {
		if !seen[c.User] {
			seen[c.User] = true
			ids = append(ids, c.User)
		}
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	channelIDs := []primitive.ObjectID{}
	for _, u := range users {
		if u.Channel != nil {
			channelIDs = append(channelIDs, *u.Channel)
		}
	}
	channels, err := s.channels.FindByIDs(ctx, channelIDs)
	if err != nil {
		return nil, err
	}
	refs := make(map[primitive.ObjectID]*ChannelRef, len(channels))
	for _, ch := range channels {
		refs[ch.ID] = &ChannelRef{ID: ch.ID, ChannelName: ch.ChannelName, ChannelAvatar: ch.ChannelAvatar}
	}

	out := make(map[primitive.ObjectID]*CommentAuthor, len(users))
	for _, u := range users {
		a := &CommentAuthor{ID: u.ID, Username: u.Username}
		if u.Channel != nil {
			a.Channel = refs[*u.Channel]
		}
		out[u.ID] = a
	}
	return out, nil
}
