// Package engagement implements the follow, like, comment and post write paths
// and the notifications they produce.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devsocial/devsocial/internal/events"
	"github.com/devsocial/devsocial/internal/metrics"
	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
)

const (
	DefaultNotificationLimit = 50
	MaxLimit                 = 100
)

type FollowState string

const (
	Followed   FollowState = "followed"
	Unfollowed FollowState = "unfollowed"
)

type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

type LikeResult struct {
	Status     LikeState `json:"status"`
	LikesCount int       `json:"likes_count"`
}

// PostInput is the author-supplied part of a new post.
type PostInput struct {
	Content     string   `json:"content"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Language    string   `json:"language,omitempty"`
	MediaURL    string   `json:"media_url,omitempty"`
	MediaType   string   `json:"media_type,omitempty"`
	Hashtags    []string `json:"hashtags"`
}

type Service struct {
	store   store.Store
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		events: events.Nop{},
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToggleFollow flips the actor->target follow edge.
func (s *Service) ToggleFollow(ctx context.Context, actorID, targetID string) (FollowState, error) {
	if actorID == targetID {
		return "", fmt.Errorf("%w: cannot follow yourself", ErrInvalidOperation)
	}
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("load actor: %w", err)
	}
	now := s.now()
	edge, err := s.store.ToggleFollow(ctx, actorID, targetID, now)
	if err != nil {
		return "", fmt.Errorf("toggle follow: %w", err)
	}
	if edge.Existed {
		s.metrics.Toggle("follow", string(Unfollowed))
		s.publish(ctx, events.Event{Kind: events.KindUnfollow, ActorID: actorID, TargetUserID: targetID, OccurredAt: now})
		return Unfollowed, nil
	}
	s.metrics.Toggle("follow", string(Followed))
	s.notify(ctx, model.Notification{
		UserID:       targetID,
		Type:         model.NotificationFollow,
		FromUserID:   actor.ID,
		FromUsername: actor.Username,
		CreatedAt:    now,
	})
	s.publish(ctx, events.Event{Kind: events.KindFollow, ActorID: actorID, TargetUserID: targetID, OccurredAt: now})
	return Followed, nil
}

// ToggleLike flips the actor's like on postID. LikesCount is the counter as
// stored right after the flip.
func (s *Service) ToggleLike(ctx context.Context, actorID, postID string) (LikeResult, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return LikeResult{}, fmt.Errorf("load post: %w", err)
	}
	now := s.now()
	edge, err := s.store.ToggleLike(ctx, postID, actorID, now)
	if err != nil {
		return LikeResult{}, fmt.Errorf("toggle like: %w", err)
	}
	if edge.Existed {
		s.metrics.Toggle("like", string(Unliked))
		s.publish(ctx, events.Event{Kind: events.KindUnlike, ActorID: actorID, TargetUserID: post.UserID, PostID: postID, OccurredAt: now})
		return LikeResult{Status: Unliked, LikesCount: edge.Count}, nil
	}
	s.metrics.Toggle("like", string(Liked))
	if post.UserID != actorID {
		if actor, err := s.store.GetUser(ctx, actorID); err == nil {
			s.notify(ctx, model.Notification{
				UserID:       post.UserID,
				Type:         model.NotificationLike,
				FromUserID:   actor.ID,
				FromUsername: actor.Username,
				PostID:       postID,
				CreatedAt:    now,
			})
		} else {
			s.logger.Warn("like notification skipped", "actor", actorID, "error", err)
		}
	}
	s.publish(ctx, events.Event{Kind: events.KindLike, ActorID: actorID, TargetUserID: post.UserID, PostID: postID, OccurredAt: now})
	return LikeResult{Status: Liked, LikesCount: edge.Count}, nil
}

func (s *Service) CreateComment(ctx context.Context, actorID, postID, content string) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return model.Comment{}, fmt.Errorf("load post: %w", err)
	}
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return model.Comment{}, fmt.Errorf("load actor: %w", err)
	}
	comment := model.Comment{
		PostID:     postID,
		UserID:     actor.ID,
		Username:   actor.Username,
		UserAvatar: actor.Avatar,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateComment(ctx, &comment); err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if post.UserID != actorID {
		s.notify(ctx, model.Notification{
			UserID:       post.UserID,
			Type:         model.NotificationComment,
			FromUserID:   actor.ID,
			FromUsername: actor.Username,
			PostID:       postID,
			CreatedAt:    comment.CreatedAt,
		})
	}
	s.publish(ctx, events.Event{Kind: events.KindComment, ActorID: actorID, TargetUserID: post.UserID, PostID: postID, OccurredAt: comment.CreatedAt})
	return comment, nil
}

func (s *Service) CreatePost(ctx context.Context, actorID string, in PostInput) (model.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return model.Post{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return model.Post{}, fmt.Errorf("load author: %w", err)
	}
	post := model.Post{
		UserID:      actor.ID,
		Username:    actor.Username,
		UserAvatar:  actor.Avatar,
		Content:     content,
		CodeSnippet: in.CodeSnippet,
		Language:    strings.TrimSpace(in.Language),
		MediaURL:    strings.TrimSpace(in.MediaURL),
		MediaType:   strings.TrimSpace(in.MediaType),
		Hashtags:    NormalizeHashtags(in.Hashtags),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreatePost(ctx, &post); err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.publish(ctx, events.Event{Kind: events.KindPostCreated, ActorID: actorID, PostID: post.ID, OccurredAt: post.CreatedAt})
	return post, nil
}

// DeletePost removes a post authored by actorID together with its likes,
// comments and hashtag rows.
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if post.UserID != actorID {
		return fmt.Errorf("%w: not authorized to delete this post", ErrForbidden)
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.publish(ctx, events.Event{Kind: events.KindPostDeleted, ActorID: actorID, PostID: postID, OccurredAt: s.now()})
	return nil
}

func (s *Service) ListNotifications(ctx context.Context, userID string, skip, limit int) ([]model.Notification, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.store.ListNotifications(ctx, userID, store.Page{Skip: skip, Limit: limit})
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkNotificationsRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}

// Reconcile rewrites counters that drifted from their edge sets.
func (s *Service) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	report, err := s.store.Reconcile(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile counters: %w", err)
	}
	if report.Users > 0 || report.Posts > 0 {
		s.logger.Warn("counters reconciled", "users", report.Users, "posts", report.Posts)
	}
	return report, nil
}

// notify stores n. The toggle it belongs to has already committed, so a
// failure here is logged and swallowed.
func (s *Service) notify(ctx context.Context, n model.Notification) {
	if n.UserID == n.FromUserID {
		return
	}
	if err := s.store.CreateNotification(ctx, &n); err != nil {
		s.logger.Error("create notification", "type", n.Type, "user", n.UserID, "error", err)
		return
	}
	s.metrics.Notification(string(n.Type))
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish engagement event", "subject", ev.Subject(), "error", err)
	}
}

// NormalizeHashtags strips leading '#', trims whitespace and drops empty and
// repeated tags, keeping first-seen order.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
