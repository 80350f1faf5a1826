package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
)

var (
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a malformed registration or login request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsUnauthorized reports whether err should surface as 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidCredentials)
}

// Policy selects how Resolve treats an absent or unusable credential.
type Policy int

const (
	// Required fails the request without a valid credential.
	Required Policy = iota
	// Optional resolves to an anonymous viewer instead of failing.
	Optional
)

// Identity is the verified user bound to a request.
type Identity struct {
	UserID   string
	Username string
	Avatar   string
}

type Service struct {
	store    store.Store
	tokenTTL time.Duration
	cost     int
}

func NewService(store store.Store, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type Registration struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
}

func (s *Service) Register(ctx context.Context, reg Registration) (model.Token, model.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.FullName = strings.TrimSpace(reg.FullName)
	if reg.Username == "" || reg.Email == "" || reg.Password == "" || reg.FullName == "" {
		return model.Token{}, model.User{}, &ValidationError{Msg: "username, email, password and full_name are required"}
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return model.Token{}, model.User{}, &ValidationError{Msg: "invalid email"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return model.Token{}, model.User{}, fmt.Errorf("hash password: %w", err)
	}
	skills := reg.Skills
	if skills == nil {
		skills = []string{}
	}
	user := model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		FullName:     reg.FullName,
		Bio:          strings.TrimSpace(reg.Bio),
		Skills:       skills,
		Avatar:       DefaultAvatar(reg.Username),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return model.Token{}, model.User{}, err
	}
	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return model.Token{}, model.User{}, err
	}
	return token, user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (model.Token, model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Token{}, model.User{}, ErrInvalidCredentials
		}
		return model.Token{}, model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Token{}, model.User{}, ErrInvalidCredentials
	}
	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return model.Token{}, model.User{}, err
	}
	return token, user, nil
}

func (s *Service) issue(ctx context.Context, userID string) (model.Token, error) {
	value, err := randomToken(32)
	if err != nil {
		return model.Token{}, err
	}
	token := model.Token{
		Token:     value,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return model.Token{}, err
	}
	return token, nil
}

// Authenticate verifies a bearer value and loads the user it is bound to.
func (s *Service) Authenticate(ctx context.Context, bearer string) (Identity, error) {
	if bearer == "" {
		return Identity{}, ErrMissingToken
	}
	token, err := s.store.GetToken(ctx, bearer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	if time.Now().After(token.ExpiresAt) {
		return Identity{}, ErrTokenExpired
	}
	user, err := s.store.GetUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}

// Resolve turns an Authorization header into an identity under policy.
// With Optional, a credential failure yields (nil, nil); store errors are
// returned under either policy.
func (s *Service) Resolve(ctx context.Context, authorization string, policy Policy) (*Identity, error) {
	bearer := ""
	if strings.HasPrefix(authorization, "Bearer ") {
		bearer = strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	}
	id, err := s.Authenticate(ctx, bearer)
	if err != nil {
		if policy == Optional && IsUnauthorized(err) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func DefaultAvatar(username string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username
}

func randomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
