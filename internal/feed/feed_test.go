package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsocial/devsocial/internal/engagement"
	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
	"github.com/devsocial/devsocial/internal/store/sqlite"
)

type fixture struct {
	store *sqlite.Store
	feed  *Service
	eng   *engagement.Service
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	st, err := sqlite.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
	return &fixture{
		store: st,
		feed:  NewService(st),
		eng:   engagement.NewService(st, engagement.WithClock(clock)),
	}
}

func (f *fixture) user(t *testing.T, username string, skills ...string) model.User {
	t.Helper()
	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FullName:     username + " Example",
		Skills:       skills,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.CreateUser(context.Background(), &u))
	return u
}

func (f *fixture) post(t *testing.T, author model.User, in engagement.PostInput) model.Post {
	t.Helper()
	p, err := f.eng.CreatePost(context.Background(), author.ID, in)
	require.NoError(t, err)
	return p
}

func ids(posts []model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestPageClamping(t *testing.T) {
	assert.Equal(t, store.Page{Skip: 0, Limit: 20}, Page(-5, 0, DefaultLimit))
	assert.Equal(t, store.Page{Skip: 3, Limit: 100}, Page(3, 1000, DefaultLimit))
	assert.Equal(t, store.Page{Skip: 0, Limit: 50}, Page(0, -1, DefaultCommentLimit))
	assert.Equal(t, store.Page{Skip: 0, Limit: 1}, Page(0, 1, DefaultLimit))
}

func TestGlobalFeedOrderingAndPaging(t *testing.T) {
	f := newFixture(t, "feed_global")
	ctx := context.Background()
	a := f.user(t, "ga")
	first := f.post(t, a, engagement.PostInput{Content: "one"})
	second := f.post(t, a, engagement.PostInput{Content: "two"})
	third := f.post(t, a, engagement.PostInput{Content: "three"})

	posts, err := f.feed.Global(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(posts))
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}

	page, err := f.feed.Global(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(page))
	assert.Equal(t, "ga", page[0].Username)
}

func TestHomeFeedScope(t *testing.T) {
	f := newFixture(t, "feed_home")
	ctx := context.Background()
	viewer, followed, stranger := f.user(t, "hv"), f.user(t, "hf"), f.user(t, "hs")

	own := f.post(t, viewer, engagement.PostInput{Content: "mine"})
	theirs := f.post(t, followed, engagement.PostInput{Content: "followed"})
	f.post(t, stranger, engagement.PostInput{Content: "stranger"})

	_, err := f.eng.ToggleFollow(ctx, viewer.ID, followed.ID)
	require.NoError(t, err)

	posts, err := f.feed.Home(ctx, Viewer(viewer.ID), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{theirs.ID, own.ID}, ids(posts))

	_, err = f.feed.Home(ctx, "", 0, 0)
	assert.Error(t, err)
}

func TestIsLikedAnnotation(t *testing.T) {
	f := newFixture(t, "feed_is_liked")
	ctx := context.Background()
	a, b := f.user(t, "la"), f.user(t, "lb")
	liked := f.post(t, a, engagement.PostInput{Content: "liked"})
	plain := f.post(t, a, engagement.PostInput{Content: "plain"})

	_, err := f.eng.ToggleLike(ctx, b.ID, liked.ID)
	require.NoError(t, err)

	posts, err := f.feed.Global(ctx, Viewer(b.ID), 0, 0)
	require.NoError(t, err)
	byID := map[string]model.Post{}
	for _, p := range posts {
		byID[p.ID] = p
	}
	assert.True(t, byID[liked.ID].IsLiked)
	assert.False(t, byID[plain.ID].IsLiked)

	anon, err := f.feed.Global(ctx, "", 0, 0)
	require.NoError(t, err)
	for _, p := range anon {
		assert.False(t, p.IsLiked)
	}

	single, err := f.feed.GetPost(ctx, Viewer(b.ID), liked.ID)
	require.NoError(t, err)
	assert.True(t, single.IsLiked)
	assert.Equal(t, 1, single.LikesCount)

	_, err = f.feed.GetPost(ctx, "", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchAndHashtag(t *testing.T) {
	f := newFixture(t, "feed_search")
	ctx := context.Background()
	a := f.user(t, "sa")
	goPost := f.post(t, a, engagement.PostInput{Content: "Learning Go today", Hashtags: []string{"GoLang"}})
	codePost := f.post(t, a, engagement.PostInput{Content: "snippet", CodeSnippet: "fmt.Println(100%)", Language: "go"})
	f.post(t, a, engagement.PostInput{Content: "rust things", Hashtags: []string{"rust"}})

	posts, err := f.feed.Search(ctx, "", "learning", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{goPost.ID}, ids(posts))

	posts, err = f.feed.Search(ctx, "", "golang", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{goPost.ID}, ids(posts))

	posts, err = f.feed.Search(ctx, "", "100%", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{codePost.ID}, ids(posts), "wildcards are literal")

	posts, err = f.feed.Hashtag(ctx, "", "#golang", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{goPost.ID}, ids(posts))

	posts, err = f.feed.Hashtag(ctx, "", "go", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts, "hashtag match is exact")

	trending, err := f.feed.Trending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, trending, 2)
}

func TestSearchFoldsUnicodeCase(t *testing.T) {
	f := newFixture(t, "feed_search_unicode")
	ctx := context.Background()
	a := f.user(t, "ua")
	p := f.post(t, a, engagement.PostInput{Content: "Über cool Go", CodeSnippet: "// ÇA MARCHE", Hashtags: []string{"Ünicode"}})
	f.post(t, a, engagement.PostInput{Content: "plain ascii"})

	for _, q := range []string{"über", "ÜBER", "ça marche", "ünicode"} {
		posts, err := f.feed.Search(ctx, "", q, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{p.ID}, ids(posts), q)
	}

	for _, tag := range []string{"ünicode", "#Ünicode", "ÜNICODE"} {
		posts, err := f.feed.Hashtag(ctx, "", tag, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{p.ID}, ids(posts), tag)
	}

	posts, err := f.feed.Search(ctx, "", "über_", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	u := f.user(t, "élodie", "Ässembly")
	users, err := f.feed.SearchUsers(ctx, "ÉLO", 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, u.ID, users[0].ID)

	users, err = f.feed.SearchUsers(ctx, "ässembly", 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, u.ID, users[0].ID)
}

func TestFollowerListsScenario(t *testing.T) {
	f := newFixture(t, "feed_followers")
	ctx := context.Background()
	a, b := f.user(t, "fa", "go"), f.user(t, "fb")

	_, err := f.eng.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	followers, err := f.feed.Followers(ctx, b.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, a.ID, followers[0].ID)

	following, err := f.feed.Following(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, b.ID, following[0].ID)

	ok, err := f.feed.IsFollowing(ctx, Viewer(a.ID), b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.feed.IsFollowing(ctx, "", b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	gotB, err := f.store.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotB.FollowersCount)

	users, err := f.feed.SearchUsers(ctx, "GO", 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, a.ID, users[0].ID)

	followers, err = f.feed.Followers(ctx, "missing", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, followers)
	assert.Empty(t, followers)

	following, err = f.feed.Following(ctx, "missing", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestCommentsAscending(t *testing.T) {
	f := newFixture(t, "feed_comments")
	ctx := context.Background()
	a, b := f.user(t, "ca"), f.user(t, "cb")
	p := f.post(t, a, engagement.PostInput{Content: "discuss"})

	c1, err := f.eng.CreateComment(ctx, b.ID, p.ID, "first")
	require.NoError(t, err)
	c2, err := f.eng.CreateComment(ctx, a.ID, p.ID, "second")
	require.NoError(t, err)

	comments, err := f.feed.Comments(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, c2.ID, comments[1].ID)

	comments, err = f.feed.Comments(ctx, "missing", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestListingsAfterDelete(t *testing.T) {
	f := newFixture(t, "feed_after_delete")
	ctx := context.Background()
	a, b := f.user(t, "da"), f.user(t, "db")
	p := f.post(t, a, engagement.PostInput{Content: "short lived"})
	_, err := f.eng.CreateComment(ctx, b.ID, p.ID, "bye")
	require.NoError(t, err)
	_, err = f.eng.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.eng.DeletePost(ctx, a.ID, p.ID))

	comments, err := f.feed.Comments(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)

	posts, err := f.feed.Author(ctx, Viewer(b.ID), a.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, err = f.feed.Author(ctx, "", "no-such-user", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, err = f.feed.GetPost(ctx, "", p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
