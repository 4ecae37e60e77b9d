package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidshare/pkg/database"
	"vidshare/pkg/media"
	"vidshare/pkg/models"
)

var errBoom = errors.New("boom")

type fakeUsers struct {
	mu       sync.Mutex
	byID     map[primitive.ObjectID]*models.User
	attachFn func() error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return database.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) AttachChannel(_ context.Context, userID, channelID primitive.ObjectID) error {
	if f.attachFn != nil {
		if err := f.attachFn(); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok || u.IsChannelCreated {
		return database.ErrNotFound
	}
	u.IsChannelCreated = true
	ch := channelID
	u.Channel = &ch
	return nil
}

type fakeChannels struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*models.Channel
	createErr error
	pushErr   error
	pullErr   error
	pushes    int
	pulls     int
}

func newFakeChannels() *fakeChannels {
	return &fakeChannels{byID: map[primitive.ObjectID]*models.Channel{}}
}

func (f *fakeChannels) add(c models.Channel) *models.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Videos == nil {
		c.Videos = []primitive.ObjectID{}
	}
	f.byID[c.ID] = &c
	return &c
}

func (f *fakeChannels) Create(_ context.Context, c *models.Channel) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = primitive.NewObjectID()
	c.Videos = []primitive.ObjectID{}
	f.add(*c)
	return nil
}

func (f *fakeChannels) FindByID(_ context.Context, id primitive.ObjectID) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	cp.Videos = append([]primitive.ObjectID{}, c.Videos...)
	return &cp, nil
}

func (f *fakeChannels) FindByName(_ context.Context, name string) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.ChannelName == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeChannels) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Channel{}
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChannels) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeChannels) PushVideo(_ context.Context, channelID, videoID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	if f.pushErr != nil {
		return f.pushErr
	}
	c, ok := f.byID[channelID]
	if !ok {
		return database.ErrNotFound
	}
	c.Videos = append(c.Videos, videoID)
	return nil
}

func (f *fakeChannels) PullVideo(_ context.Context, channelID, videoID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if f.pullErr != nil {
		return f.pullErr
	}
	c, ok := f.byID[channelID]
	if !ok {
		return database.ErrNotFound
	}
	kept := c.Videos[:0]
	for _, v := range c.Videos {
		if v != videoID {
			kept = append(kept, v)
		}
	}
	c.Videos = kept
	return nil
}

type fakeVideos struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*models.Video
	createErr error
	deleteErr error
	clock     time.Time
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{
		byID:  map[primitive.ObjectID]*models.Video{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeVideos) Create(_ context.Context, v *models.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	v.ID = primitive.NewObjectID()
	f.clock = f.clock.Add(time.Minute)
	v.CreatedAt = f.clock
	if v.Views == nil {
		v.Views = []primitive.ObjectID{}
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVideos) FindByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) sorted(match func(*models.Video) bool) []models.Video {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Video{}
	for _, v := range f.byID {
		if match(v) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeVideos) List(context.Context) ([]models.Video, error) {
	return f.sorted(func(*models.Video) bool { return true }), nil
}

func (f *fakeVideos) FindByTag(_ context.Context, tag string) ([]models.Video, error) {
	return f.sorted(func(v *models.Video) bool {
		for _, t := range v.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeVideos) Update(_ context.Context, id primitive.ObjectID, p models.VideoPatch) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Tags != nil {
		v.Tags = p.Tags
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range set {
		if v == id {
			return set
		}
	}
	return append(set, id)
}

func pull(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeVideos) AddView(_ context.Context, id, userID primitive.ObjectID) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	v.Views = addToSet(v.Views, userID)
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) React(_ context.Context, id, userID primitive.ObjectID, like bool) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if like {
		v.Likes = addToSet(v.Likes, userID)
		v.Dislikes = pull(v.Dislikes, userID)
	} else {
		v.Dislikes = addToSet(v.Dislikes, userID)
		v.Likes = pull(v.Likes, userID)
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) TopTags(_ context.Context, limit int) ([]models.TagCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, v := range f.byID {
		for _, t := range v.Tags {
			counts[t]++
		}
	}
	out := []models.TagCount{}
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeComments struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.Comment
	clock time.Time
}

func newFakeComments() *fakeComments {
	return &fakeComments{
		byID:  map[primitive.ObjectID]*models.Comment{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	f.clock = f.clock.Add(time.Minute)
	c.CreatedAt = f.clock
	c.UpdatedAt = f.clock
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeComments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) FindByVideo(_ context.Context, videoID primitive.ObjectID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.byID {
		if c.VideoID == videoID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeComments) UpdateText(_ context.Context, id primitive.ObjectID, text string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c.Text = text
	cp := *c
	return &cp, nil
}

func (f *fakeComments) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeMedia hands out sequential public ids and remembers every call.
type fakeMedia struct {
	mu          sync.Mutex
	uploadErr   error
	destroyErr  error
	noThumbnail bool
	uploads     []media.UploadParams
	destroyed   []string
	seq         int
}

func (f *fakeMedia) Upload(_ context.Context, up *media.Upload, p media.UploadParams) (*media.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, p)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if up != nil && up.Reader != nil {
		io.Copy(io.Discard, up.Reader)
	}
	f.seq++
	id := fmt.Sprintf("asset%d", f.seq)
	res := &media.UploadResult{
		PublicID:  id,
		SecureURL: fmt.Sprintf("https://cdn.test/%s/%s%s", p.ResourceType, id, extFor(p.ResourceType)),
	}
	for i := range p.Eager {
		if f.noThumbnail {
			break
		}
		res.Eager = append(res.Eager, media.EagerResult{
			SecureURL: fmt.Sprintf("https://cdn.test/image/%s_%d.jpg", id, i),
		})
	}
	if p.ResourceType == media.ResourceVideo {
		res.Duration = 12.5
	}
	return res, nil
}

func extFor(kind media.ResourceType) string {
	if kind == media.ResourceVideo {
		return ".mp4"
	}
	return ".png"
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string, kind media.ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, string(kind)+":"+publicID)
	return f.destroyErr
}

func (f *fakeMedia) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []database.Compensation
}

func (f *fakeJournal) Record(e database.Compensation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}
