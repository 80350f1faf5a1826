package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"
)

func TestUsers(t *testing.T) {
	st := newTestStore(t, "users")
	ctx := context.Background()

	ada := createUser(t, st, "ada")

	got, err := st.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, []string{"go"}, got.Skills)

	got, err = st.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	_, err = st.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	dup := model.User{Username: "ada", Email: "other@example.com", CreatedAt: time.Now()}
	assert.ErrorIs(t, st.CreateUser(ctx, &dup), store.ErrDuplicateUser)
	dup = model.User{Username: "other", Email: "ada@example.com", CreatedAt: time.Now()}
	assert.ErrorIs(t, st.CreateUser(ctx, &dup), store.ErrDuplicateUser)
}

func TestGetUsersKeepsOrder(t *testing.T) {
	st := newTestStore(t, "get_users")
	a := createUser(t, st, "a")
	b := createUser(t, st, "b")
	c := createUser(t, st, "c")

	users, err := st.GetUsers(context.Background(), []string{c.ID, "missing", a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{users[0].ID, users[1].ID, users[2].ID})

	users, err = st.GetUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUpdateProfile(t *testing.T) {
	st := newTestStore(t, "profile")
	ctx := context.Background()
	ada := createUser(t, st, "ada")

	bio := "engines"
	skills := []string{"math"}
	require.NoError(t, st.UpdateProfile(ctx, ada.ID, model.ProfileUpdate{Bio: &bio, Skills: &skills}))

	got, err := st.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "engines", got.Bio)
	assert.Equal(t, []string{"math"}, got.Skills)
	assert.Equal(t, "Ada", got.FullName)

	require.NoError(t, st.UpdateProfile(ctx, ada.ID, model.ProfileUpdate{}))
	assert.ErrorIs(t, st.UpdateProfile(ctx, "missing", model.ProfileUpdate{Bio: &bio}), store.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	st := newTestStore(t, "search_users")
	createUser(t, st, "ada")
	createUser(t, st, "grace")
	createUser(t, st, "adam")

	users, err := st.SearchUsers(context.Background(), "AD", store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Username)
	assert.Equal(t, "adam", users[1].Username)

	users, err = st.SearchUsers(context.Background(), "%", store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearchUsersFoldsUpdatedProfile(t *testing.T) {
	st := newTestStore(t, "search_users_fold")
	ctx := context.Background()
	ada := createUser(t, st, "ada")

	name := "Ådä Lovelace"
	skills := []string{"Ünix"}
	require.NoError(t, st.UpdateProfile(ctx, ada.ID, model.ProfileUpdate{FullName: &name, Skills: &skills}))

	for _, q := range []string{"ådä", "ÅDÄ LOVE", "ünix"} {
		users, err := st.SearchUsers(ctx, q, store.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, users, 1, q)
		assert.Equal(t, ada.ID, users[0].ID)
	}
}

func TestTokens(t *testing.T) {
	st := newTestStore(t, "tokens")
	ctx := context.Background()
	ada := createUser(t, st, "ada")

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	require.NoError(t, st.CreateToken(ctx, model.Token{Token: "tok", UserID: ada.ID, ExpiresAt: exp}))

	tok, err := st.GetToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, tok.UserID)
	assert.True(t, exp.Equal(tok.ExpiresAt))

	_, err = st.GetToken(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotifications(t *testing.T) {
	st := newTestStore(t, "notifications")
	ctx := context.Background()
	ada := createUser(t, st, "ada")
	grace := createUser(t, st, "grace")

	base := time.Now()
	for i, kind := range []model.NotificationType{model.NotificationFollow, model.NotificationLike} {
		n := model.Notification{
			UserID:       ada.ID,
			Type:         kind,
			FromUserID:   grace.ID,
			FromUsername: grace.Username,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, st.CreateNotification(ctx, &n))
	}

	ns, err := st.ListNotifications(ctx, ada.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, model.NotificationLike, ns[0].Type)
	assert.Equal(t, model.NotificationFollow, ns[1].Type)
	assert.False(t, ns[0].Read)
	assert.Empty(t, ns[0].PostID)

	unread, err := st.CountUnreadNotifications(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	n, err := st.MarkNotificationsRead(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = st.MarkNotificationsRead(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err = st.CountUnreadNotifications(ctx, grace.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
