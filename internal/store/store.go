package store

import (
	"context"
	"errors"
	"time"

	"github.com/devsocial/devsocial/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("user with this email or username already exists")
)

// Page is an offset window over a time-ordered listing.
type Page struct {
	Skip  int
	Limit int
}

// PostQuery selects the posts of one feed. At most one of AuthorIDs, Search or
// Hashtag narrows the listing; the zero value lists every post.
type PostQuery struct {
	AuthorIDs []string
	Search    string
	Hashtag   string
	Page      Page
}

// EdgeState is the presence of a follow or like edge.
type EdgeState struct {
	// Existed reports whether the edge was present before the toggle.
	Existed bool
	// Count is the counter backing the edge, read after the mutation in the
	// same transaction (likes_count for likes, followers_count of the target
	// for follows).
	Count int
}

type Store interface {
	UserStore
	PostStore
	CommentStore
	LikeStore
	FollowStore
	NotificationStore
	TokenStore
	GetSiteStats(ctx context.Context) (model.SiteStats, error)
	Reconcile(ctx context.Context) (model.ReconcileReport, error)
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUsers(ctx context.Context, ids []string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) error
	SearchUsers(ctx context.Context, q string, page Page) ([]model.User, error)
}

type PostStore interface {
	// CreatePost inserts the post with its hashtag index rows and bumps the
	// author's posts_count in one transaction.
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context, q PostQuery) ([]model.Post, error)
	// DeletePost removes the post, its likes, comments and hashtag rows and
	// decrements the author's posts_count in one transaction.
	DeletePost(ctx context.Context, id string) error
	TrendingHashtags(ctx context.Context, limit int) ([]model.HashtagCount, error)
}

type CommentStore interface {
	// CreateComment inserts the comment and bumps the post's comments_count in
	// one transaction. Returns ErrNotFound if the post is gone.
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByPost(ctx context.Context, postID string, page Page) ([]model.Comment, error)
}

type LikeStore interface {
	// ToggleLike removes the (postID, userID) edge if present, inserts it
	// otherwise, and adjusts likes_count accordingly.
	ToggleLike(ctx context.Context, postID, userID string, at time.Time) (EdgeState, error)
	// LikedPostIDs returns the subset of postIDs that userID has liked.
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	CountLikes(ctx context.Context, postID string) (int, error)
}

type FollowStore interface {
	// ToggleFollow removes the follower->following edge if present, inserts it
	// otherwise, and adjusts both users' counters accordingly.
	ToggleFollow(ctx context.Context, followerID, followingID string, at time.Time) (EdgeState, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowingIDs(ctx context.Context, followerID string, page Page) ([]string, error)
	ListFollowerIDs(ctx context.Context, followingID string, page Page) ([]string, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, page Page) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
}

type TokenStore interface {
	CreateToken(ctx context.Context, token model.Token) error
	GetToken(ctx context.Context, token string) (model.Token, error)
}
