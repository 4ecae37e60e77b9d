package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"vidshare/pkg/apperr"
	"vidshare/pkg/auth"
	"vidshare/pkg/database"
	"vidshare/pkg/models"
)

const (
	minPasswordLen  = 8
	passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type TokenIssuer interface {
	GenerateJWT(userID string) (string, error)
	ValidateJWT(token string) (*auth.Claims, error)
}

type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the user as returned to the browser.
type Session struct {
	ID               primitive.ObjectID  `json:"_id"`
	Username         string              `json:"username"`
	Email            string              `json:"email"`
	Channel          *primitive.ObjectID `json:"channel"`
	IsChannelCreated bool                `json:"isChannelCreated"`
	ChannelAvatar    string              `json:"channelAvatar"`
}

type UserService struct {
	users    UserRepository
	channels ChannelRepository
	tokens   TokenIssuer
}

func NewUserService(users UserRepository, channels ChannelRepository, tokens TokenIssuer) *UserService {
	return &UserService{users: users, channels: channels, tokens: tokens}
}

// Register creates the account and returns it with a fresh session token.
func (s *UserService) Register(ctx context.Context, in Credentials) (*Session, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)
	if username == "" || email == "" || password == "" {
		return nil, "", apperr.Validation("All fields are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", apperr.Validation("Invalid email format")
	}
	if !strongPassword(password) {
		return nil, "", apperr.Validation("Password must be at least 8 characters long and include an uppercase letter, a lowercase letter, a number and a special character")
	}

	if err := s.ensureFree(ctx, s.users.FindByEmail, email, "User already exists"); err != nil {
		return nil, "", err
	}
	if err := s.ensureFree(ctx, s.users.FindByUsername, username, "Username already exists"); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Persistence("Error creating user", err)
	}
	user := &models.User{
		Email:    email,
		Username: username,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, "", apperr.Validation("User already exists")
		}
		return nil, "", apperr.Persistence("Error creating user", err)
	}

	token, err := s.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Persistence("Error generating token", err)
	}
	return s.session(ctx, user), token, nil
}

func (s *UserService) Login(ctx context.Context, in Credentials) (*Session, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)
	if email == "" || password == "" {
		return nil, "", apperr.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", lookupErr(err, "User not found", "Unable to log in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Unauthenticated("Invalid credentials")
	}

	token, err := s.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Persistence("Error generating token", err)
	}
	return s.session(ctx, user), token, nil
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Not authorized, no token")
	}
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Unauthenticated("Not authorized, user not found")
		}
		return nil, apperr.Persistence("Unable to authenticate", err)
	}
	return user, nil
}

// Current builds the session view of an already authenticated user.
func (s *UserService) Current(ctx context.Context, user *models.User) *Session {
	return s.session(ctx, user)
}

func (s *UserService) session(ctx context.Context, u *models.User) *Session {
	sess := &Session{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Channel:          u.Channel,
		IsChannelCreated: u.IsChannelCreated,
	}
	if u.IsChannelCreated && u.Channel != nil {
		// A missing channel only leaves the avatar blank.
		if ch, err := s.channels.FindByID(ctx, *u.Channel); err == nil {
			sess.ChannelAvatar = ch.ChannelAvatar
		}
	}
	return sess
}

func (s *UserService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), value, takenMsg string) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return apperr.Validation(takenMsg)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return apperr.Persistence("Error creating user", err)
	}
}

func strongPassword(p string) bool {
	if len(p) < minPasswordLen {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
