package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
)

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	st, err := Open("file:sqlite_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createUser(t *testing.T, st *Store, username string) model.User {
	t.Helper()
	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Skills:       []string{"go"},
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.CreateUser(context.Background(), &u))
	return u
}

func createPost(t *testing.T, st *Store, author model.User, content string, at time.Time, tags ...string) model.Post {
	t.Helper()
	p := model.Post{UserID: author.ID, Content: content, Hashtags: tags, CreatedAt: at}
	require.NoError(t, st.CreatePost(context.Background(), &p))
	return p
}

func TestOpenIsIdempotent(t *testing.T) {
	first := newTestStore(t, "migrate")
	second, err := Open("file:sqlite_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, first.db.Get(&version, `SELECT MAX(version) FROM schema_version`))
	assert.Equal(t, len(migrations), version)
}

func TestPostLifecycle(t *testing.T) {
	st := newTestStore(t, "posts")
	ctx := context.Background()
	ada := createUser(t, st, "ada")

	post := createPost(t, st, ada, "hello", time.Now(), "go", "sql")
	got, err := st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, ada.Avatar, got.UserAvatar)
	assert.Equal(t, []string{"go", "sql"}, got.Hashtags)
	assert.Empty(t, got.CodeSnippet)

	user, err := st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.PostsCount)

	orphan := model.Post{UserID: "missing", Content: "x", CreatedAt: time.Now()}
	assert.ErrorIs(t, st.CreatePost(ctx, &orphan), store.ErrNotFound)

	require.NoError(t, st.DeletePost(ctx, post.ID))
	_, err = st.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.DeletePost(ctx, post.ID), store.ErrNotFound)

	user, err = st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, user.PostsCount)
}

func TestDeletePostCascades(t *testing.T) {
	st := newTestStore(t, "cascade")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")
	post := createPost(t, st, ada, "bye", time.Now(), "go")

	_, err := st.ToggleLike(ctx, post.ID, grace.ID, time.Now())
	require.NoError(t, err)
	c := model.Comment{PostID: post.ID, UserID: grace.ID, Content: "hi", CreatedAt: time.Now()}
	require.NoError(t, st.CreateComment(ctx, &c))

	require.NoError(t, st.DeletePost(ctx, post.ID))

	stats, err := st.GetSiteStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SiteStats{Users: 2}, stats)

	tags, err := st.TrendingHashtags(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestListPostsFilters(t *testing.T) {
	st := newTestStore(t, "list")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")
	base := time.Now()

	p1 := createPost(t, st, ada, "Channels and select", base, "Golang")
	p2 := createPost(t, st, grace, "Borrow checker", base.Add(time.Second), "rust")
	p3 := createPost(t, st, ada, "100% coverage", base.Add(2*time.Second), "testing")

	all, err := st.ListPosts(ctx, store.PostQuery{Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, ids(all))

	page, err := st.ListPosts(ctx, store.PostQuery{Page: store.Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, ids(page))

	byAuthor, err := st.ListPosts(ctx, store.PostQuery{AuthorIDs: []string{ada.ID}, Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID, p1.ID}, ids(byAuthor))

	byTag, err := st.ListPosts(ctx, store.PostQuery{Hashtag: "golang", Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID}, ids(byTag))

	search, err := st.ListPosts(ctx, store.PostQuery{Search: "CHECKER", Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, ids(search))

	// Search matches hashtags too.
	search, err = st.ListPosts(ctx, store.PostQuery{Search: "rus", Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, ids(search))

	// LIKE wildcards are literal.
	search, err = st.ListPosts(ctx, store.PostQuery{Search: "%", Page: store.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID}, ids(search))
}

func TestTrendingHashtags(t *testing.T) {
	st := newTestStore(t, "trending")
	ada := createUser(t, st, "ada")
	now := time.Now()
	createPost(t, st, ada, "a", now, "go", "sql")
	createPost(t, st, ada, "b", now, "go")
	createPost(t, st, ada, "c", now, "go", "api")

	tags, err := st.TrendingHashtags(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []model.HashtagCount{{Hashtag: "go", Count: 3}, {Hashtag: "api", Count: 1}}, tags)
}

func TestToggleLike(t *testing.T) {
	st := newTestStore(t, "likes")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")
	post := createPost(t, st, ada, "like me", time.Now())

	state, err := st.ToggleLike(ctx, post.ID, grace.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, store.EdgeState{Existed: false, Count: 1}, state)

	liked, err := st.LikedPostIDs(ctx, grace.ID, []string{post.ID, "other"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{post.ID: true}, liked)

	state, err = st.ToggleLike(ctx, post.ID, grace.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, store.EdgeState{Existed: true, Count: 0}, state)

	count, err := st.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = st.ToggleLike(ctx, "missing", grace.ID, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleFollow(t *testing.T) {
	st := newTestStore(t, "follows")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")
	linus := createUser(t, st, "linus")

	state, err := st.ToggleFollow(ctx, ada.ID, grace.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, store.EdgeState{Existed: false, Count: 1}, state)
	_, err = st.ToggleFollow(ctx, ada.ID, linus.ID, time.Now().Add(time.Second))
	require.NoError(t, err)

	following, err := st.IsFollowing(ctx, ada.ID, grace.ID)
	require.NoError(t, err)
	assert.True(t, following)

	ids, err := st.ListFollowingIDs(ctx, ada.ID, store.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{grace.ID, linus.ID}, ids)

	ids, err = st.ListFollowerIDs(ctx, grace.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{ada.ID}, ids)

	got, err := st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FollowingCount)

	state, err = st.ToggleFollow(ctx, ada.ID, grace.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, store.EdgeState{Existed: true, Count: 0}, state)

	got, err = st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FollowingCount)

	_, err = st.ToggleFollow(ctx, ada.ID, "missing", time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommentsRequirePost(t *testing.T) {
	st := newTestStore(t, "comments")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	post := createPost(t, st, ada, "discuss", time.Now())
	base := time.Now()

	for i, body := range []string{"first", "second"} {
		c := model.Comment{PostID: post.ID, UserID: ada.ID, Content: body, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, st.CreateComment(ctx, &c))
	}
	comments, err := st.ListCommentsByPost(ctx, post.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "ada", comments[0].Username)

	got, err := st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)

	orphan := model.Comment{PostID: "missing", UserID: ada.ID, Content: "x", CreatedAt: time.Now()}
	assert.ErrorIs(t, st.CreateComment(ctx, &orphan), store.ErrNotFound)
}

func TestReconcileRepairsDrift(t *testing.T) {
	st := newTestStore(t, "reconcile")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")
	post := createPost(t, st, ada, "counted", time.Now())
	_, err := st.ToggleLike(ctx, post.ID, grace.ID, time.Now())
	require.NoError(t, err)
	_, err = st.ToggleFollow(ctx, grace.ID, ada.ID, time.Now())
	require.NoError(t, err)

	report, err := st.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ReconcileReport{}, report)

	_, err = st.db.Exec(`UPDATE users SET followers_count = 7, posts_count = 0 WHERE id = ?`, ada.ID)
	require.NoError(t, err)
	_, err = st.db.Exec(`UPDATE posts SET likes_count = 42, comments_count = 3 WHERE id = ?`, post.ID)
	require.NoError(t, err)

	report, err = st.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ReconcileReport{Users: 1, Posts: 1}, report)

	user, err := st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.FollowersCount)
	assert.Equal(t, 1, user.PostsCount)

	got, err := st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Zero(t, got.CommentsCount)
}

func ids(posts []model.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
