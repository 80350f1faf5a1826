// Package feed assembles paginated, viewer-annotated post listings.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
)

const (
	DefaultLimit         = 20
	DefaultCommentLimit  = 50
	DefaultTrendingLimit = 10
	MaxLimit             = 100
	// FollowSetCap bounds the follow edges a home feed expands.
	FollowSetCap = 1000
)

// Page normalises a requested window: negative skip becomes 0 and limit is
// clamped to 1..MaxLimit, with def used when limit is unset.
func Page(skip, limit, def int) store.Page {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return store.Page{Skip: skip, Limit: limit}
}

// Viewer is the requesting user, or "" for anonymous requests.
type Viewer string

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Global(ctx context.Context, viewer Viewer, skip, limit int) ([]model.Post, error) {
	return s.list(ctx, viewer, store.PostQuery{Page: Page(skip, limit, DefaultLimit)})
}

// Home lists the viewer's own posts plus posts of everyone they follow.
func (s *Service) Home(ctx context.Context, viewer Viewer, skip, limit int) ([]model.Post, error) {
	if viewer == "" {
		return nil, fmt.Errorf("home feed requires a viewer")
	}
	following, err := s.store.ListFollowingIDs(ctx, string(viewer), store.Page{Limit: FollowSetCap})
	if err != nil {
		return nil, fmt.Errorf("load follow set: %w", err)
	}
	authors := append(following, string(viewer))
	return s.list(ctx, viewer, store.PostQuery{AuthorIDs: authors, Page: Page(skip, limit, DefaultLimit)})
}

// Author lists posts by one user. An unknown user yields an empty page.
func (s *Service) Author(ctx context.Context, viewer Viewer, authorID string, skip, limit int) ([]model.Post, error) {
	return s.list(ctx, viewer, store.PostQuery{AuthorIDs: []string{authorID}, Page: Page(skip, limit, DefaultLimit)})
}

// Search matches q case-insensitively against content, code and hashtags.
func (s *Service) Search(ctx context.Context, viewer Viewer, q string, skip, limit int) ([]model.Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.Post{}, nil
	}
	return s.list(ctx, viewer, store.PostQuery{Search: q, Page: Page(skip, limit, DefaultLimit)})
}

func (s *Service) Hashtag(ctx context.Context, viewer Viewer, tag string, skip, limit int) ([]model.Post, error) {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	if tag == "" {
		return []model.Post{}, nil
	}
	return s.list(ctx, viewer, store.PostQuery{Hashtag: tag, Page: Page(skip, limit, DefaultLimit)})
}

func (s *Service) GetPost(ctx context.Context, viewer Viewer, id string) (model.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	posts := []model.Post{post}
	if err := s.annotate(ctx, viewer, posts); err != nil {
		return model.Post{}, err
	}
	return posts[0], nil
}

// Comments lists a post's comments oldest first. A missing or deleted post
// has no comments.
func (s *Service) Comments(ctx context.Context, postID string, skip, limit int) ([]model.Comment, error) {
	return s.store.ListCommentsByPost(ctx, postID, Page(skip, limit, DefaultCommentLimit))
}

func (s *Service) Trending(ctx context.Context, limit int) ([]model.HashtagCount, error) {
	return s.store.TrendingHashtags(ctx, Page(0, limit, DefaultTrendingLimit).Limit)
}

func (s *Service) SearchUsers(ctx context.Context, q string, skip, limit int) ([]model.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.User{}, nil
	}
	return s.store.SearchUsers(ctx, q, Page(skip, limit, DefaultLimit))
}

func (s *Service) Followers(ctx context.Context, userID string, skip, limit int) ([]model.User, error) {
	ids, err := s.store.ListFollowerIDs(ctx, userID, Page(skip, limit, DefaultLimit))
	if err != nil {
		return nil, err
	}
	return s.store.GetUsers(ctx, ids)
}

func (s *Service) Following(ctx context.Context, userID string, skip, limit int) ([]model.User, error) {
	ids, err := s.store.ListFollowingIDs(ctx, userID, Page(skip, limit, DefaultLimit))
	if err != nil {
		return nil, err
	}
	return s.store.GetUsers(ctx, ids)
}

func (s *Service) IsFollowing(ctx context.Context, viewer Viewer, targetID string) (bool, error) {
	if viewer == "" {
		return false, nil
	}
	return s.store.IsFollowing(ctx, string(viewer), targetID)
}

func (s *Service) list(ctx context.Context, viewer Viewer, q store.PostQuery) ([]model.Post, error) {
	posts, err := s.store.ListPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := s.annotate(ctx, viewer, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// annotate sets IsLiked for the viewer with one membership query per page.
func (s *Service) annotate(ctx context.Context, viewer Viewer, posts []model.Post) error {
	if viewer == "" || len(posts) == 0 {
		for i := range posts {
			posts[i].IsLiked = false
		}
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.store.LikedPostIDs(ctx, string(viewer), ids)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	for i := range posts {
		posts[i].IsLiked = liked[posts[i].ID]
	}
	return nil
}
