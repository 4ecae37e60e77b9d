package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/models"
)

// Identity is the authenticated caller as seen by the services.
type Identity struct {
	ID        primitive.ObjectID
	ChannelID *primitive.ObjectID
}

func IdentityOf(u *models.User) Identity {
	id := Identity{ID: u.ID}
	if u.IsChannelCreated && u.Channel != nil && !u.Channel.IsZero() {
		ch := *u.Channel
		id.ChannelID = &ch
	}
	return id
}

// Owns reports whether the stored owner reference is the caller.
func (i Identity) Owns(owner primitive.ObjectID) bool {
	return !i.ID.IsZero() && i.ID == owner
}
